package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

// Ledger applies conditional inventory movements against ticket tiers.
// Every mutation is a single guarded UPDATE so concurrent debits against
// the same tier can never take availability below zero, and credits can
// never push it above the tier's maximum.
type Ledger struct {
	db *gorm.DB
}

// NewLedger builds a ledger bound to the provided database handle.
func NewLedger(db *gorm.DB) (*Ledger, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database handle required")
	}
	return &Ledger{db: db}, nil
}

// Debit atomically removes qty units from the tier's availability. It
// fails with CodeInsufficientInventory when fewer than qty units remain,
// leaving the tier untouched.
func (l *Ledger) Debit(ctx context.Context, tierID uuid.UUID, qty int) error {
	if tierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE ticket_tiers
		SET available_quantity = available_quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_quantity >= ?
	`, qty, tierID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit inventory")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows means either the tier is gone or it lacked stock; reread
	// to report which.
	tier, err := l.FindTier(ctx, tierID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough tickets remaining").WithDetails(map[string]any{
		"tier_id":   tierID.String(),
		"requested": qty,
		"available": tier.AvailableQuantity,
	})
}

// Credit atomically returns qty units to the tier, clamping at the
// tier's configured maximum so a double refund cannot overfill it.
func (l *Ledger) Credit(ctx context.Context, tierID uuid.UUID, qty int) error {
	if tierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE ticket_tiers
		SET available_quantity = CASE
				WHEN available_quantity + ? > max_quantity THEN max_quantity
				ELSE available_quantity + ?
			END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, qty, tierID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ticket tier not found").WithDetails(map[string]any{
			"tier_id": tierID.String(),
		})
	}
	return nil
}

// FindTier loads a tier by id.
func (l *Ledger) FindTier(ctx context.Context, tierID uuid.UUID) (*models.TicketTier, error) {
	var tier models.TicketTier
	err := l.db.WithContext(ctx).First(&tier, "id = ?", tierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket tier not found").WithDetails(map[string]any{
			"tier_id": tierID.String(),
		})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket tier")
	}
	return &tier, nil
}
