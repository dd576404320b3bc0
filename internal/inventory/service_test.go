package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

func TestLedger_Debit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	tier := seedTier(t, db, 10, 10)

	if err := ledger.Debit(ctx, tier.ID, 4); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 6 {
		t.Fatalf("expected 6 available, got %d", got)
	}

	err = ledger.Debit(ctx, tier.ID, 7)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientInventory) {
		t.Fatalf("expected insufficient inventory, got %v", err)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 6 {
		t.Fatalf("failed debit must not change availability, got %d", got)
	}

	if err := ledger.Debit(ctx, tier.ID, 6); err != nil {
		t.Fatalf("debit to zero: %v", err)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestLedger_DebitLastUnitOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	tier := seedTier(t, db, 1, 1)

	first := ledger.Debit(ctx, tier.ID, 1)
	second := ledger.Debit(ctx, tier.ID, 1)

	if first != nil {
		t.Fatalf("first debit should win: %v", first)
	}
	if !pkgerrors.IsCode(second, pkgerrors.CodeInsufficientInventory) {
		t.Fatalf("second debit should report insufficient inventory, got %v", second)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestLedger_ConcurrentDebitsSellLastUnitOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	// One connection keeps sqlite from returning busy errors; the
	// contention still races through the conditional UPDATE.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tier := seedTier(t, db, 1, 1)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Debit(ctx, tier.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	var won, insufficient int
	for err := range results {
		switch {
		case err == nil:
			won++
		case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientInventory):
			insufficient++
		default:
			t.Fatalf("unexpected debit error: %v", err)
		}
	}
	if won != 1 || insufficient != attempts-1 {
		t.Fatalf("expected 1 winner and %d rejections, got %d/%d", attempts-1, won, insufficient)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestLedger_DebitMissingTier(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	err = ledger.Debit(context.Background(), uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLedger_CreditClampsAtMax(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	tier := seedTier(t, db, 10, 8)

	if err := ledger.Credit(ctx, tier.ID, 1); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 9 {
		t.Fatalf("expected 9 available, got %d", got)
	}

	if err := ledger.Credit(ctx, tier.ID, 5); err != nil {
		t.Fatalf("credit past max: %v", err)
	}
	if got := loadTier(t, db, tier.ID).AvailableQuantity; got != 10 {
		t.Fatalf("credit must clamp at max, got %d", got)
	}

	err = ledger.Credit(ctx, uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLedger_QuantityValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	tier := seedTier(t, db, 5, 5)

	for _, qty := range []int{0, -3} {
		if err := ledger.Debit(context.Background(), tier.ID, qty); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("debit qty %d: expected validation error, got %v", qty, err)
		}
		if err := ledger.Credit(context.Background(), tier.ID, qty); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("credit qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func seedTier(t *testing.T, db *gorm.DB, max, available int) *models.TicketTier {
	t.Helper()
	tier := &models.TicketTier{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		Name:              "General Admission",
		PriceCents:        4500,
		MaxQuantity:       max,
		AvailableQuantity: available,
	}
	if err := db.Create(tier).Error; err != nil {
		t.Fatalf("seed tier: %v", err)
	}
	return tier
}

func loadTier(t *testing.T, db *gorm.DB, id uuid.UUID) *models.TicketTier {
	t.Helper()
	var tier models.TicketTier
	if err := db.First(&tier, "id = ?", id).Error; err != nil {
		t.Fatalf("load tier: %v", err)
	}
	return &tier
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.TicketTier{}); err != nil {
		t.Fatalf("migrate tiers: %v", err)
	}
	return db
}
