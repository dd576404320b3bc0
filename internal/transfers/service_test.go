package transfers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	"github.com/gatecrest/boxoffice-backend/pkg/enums"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

func TestFeeAmountCents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total   int
		percent float64
		want    int
	}{
		{10000, 4, 400},
		{4500, 4, 180},
		{101, 2.5, 3}, // 2.525 rounds up
		{99, 2.5, 2},  // 2.475 rounds down
		{10000, 0, 0},
		{0, 4, 0},
		{-500, 4, 0},
	}
	for _, tc := range cases {
		if got := FeeAmountCents(tc.total, tc.percent); got != tc.want {
			t.Fatalf("FeeAmountCents(%d, %v) = %d, want %d", tc.total, tc.percent, got, tc.want)
		}
	}
}

func TestReversalAmountCents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		transfer int
		refunded int
		total    int
		want     int
	}{
		{400, 5000, 10000, 200},
		{400, 10000, 10000, 400},
		{400, 12000, 10000, 400}, // over-refund clamps to full transfer
		{400, 3333, 10000, 133},
		{400, 0, 10000, 0},
		{0, 5000, 10000, 0},
	}
	for _, tc := range cases {
		if got := ReversalAmountCents(tc.transfer, tc.refunded, tc.total); got != tc.want {
			t.Fatalf("ReversalAmountCents(%d, %d, %d) = %d, want %d",
				tc.transfer, tc.refunded, tc.total, got, tc.want)
		}
	}
}

type fakeRepo struct {
	transfers map[uuid.UUID]*models.Transfer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{transfers: map[uuid.UUID]*models.Transfer{}}
}

func (f *fakeRepo) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if _, ok := f.transfers[transfer.OrderID]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "transfer already recorded for order")
	}
	copied := *transfer
	f.transfers[transfer.OrderID] = &copied
	return nil
}

func (f *fakeRepo) UpdateTransfer(ctx context.Context, transfer *models.Transfer) error {
	copied := *transfer
	f.transfers[transfer.OrderID] = &copied
	return nil
}

func (f *fakeRepo) FindTransferByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Transfer, error) {
	stored, ok := f.transfers[orderID]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

type fakeGateway struct {
	transferErr   error
	reversalErr   error
	transferCalls int
	reversalCalls int
	lastAmount    int64
	lastReversal  *int64
}

func (f *fakeGateway) CreateTransfer(ctx context.Context, amountCents int64, currency, destination, sourceCharge string, metadata map[string]string) (string, error) {
	f.transferCalls++
	f.lastAmount = amountCents
	if f.transferErr != nil {
		return "", f.transferErr
	}
	return "tr_fake_1", nil
}

func (f *fakeGateway) CreateReversal(ctx context.Context, transferID string, amountCents *int64, metadata map[string]string) (string, error) {
	f.reversalCalls++
	f.lastReversal = amountCents
	if f.reversalErr != nil {
		return "", f.reversalErr
	}
	return "trr_fake_1", nil
}

func newService(t *testing.T, repo *fakeRepo, gateway *fakeGateway) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Gateway:     gateway,
		Destination: "acct_partner",
		FeePercent:  4,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_CreateForOrder(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	gateway := &fakeGateway{}
	svc := newService(t, repo, gateway)
	ctx := context.Background()
	orderID := uuid.New()

	transfer, err := svc.CreateForOrder(ctx, CreateInput{
		OrderID:      orderID,
		OrderCode:    "ORD-20260704-ABCDEF123456",
		SourceCharge: "ch_test_1",
		TotalCents:   10000,
		Currency:     enums.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if transfer.AmountCents != 400 || transfer.Status != enums.TransferStatusCompleted {
		t.Fatalf("unexpected transfer: %+v", transfer)
	}
	if gateway.lastAmount != 400 {
		t.Fatalf("gateway got amount %d, want 400", gateway.lastAmount)
	}

	// Redelivery finds the completed record and does not pay again.
	again, err := svc.CreateForOrder(ctx, CreateInput{OrderID: orderID, TotalCents: 10000})
	if err != nil {
		t.Fatalf("replayed create: %v", err)
	}
	if again.ID != transfer.ID {
		t.Fatalf("expected stored transfer, got %+v", again)
	}
	if gateway.transferCalls != 1 {
		t.Fatalf("expected one gateway call, got %d", gateway.transferCalls)
	}
}

func TestService_CreateForOrderGatewayFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	gateway := &fakeGateway{transferErr: errors.New("insufficient funds on platform")}
	svc := newService(t, repo, gateway)
	ctx := context.Background()
	orderID := uuid.New()

	transfer, err := svc.CreateForOrder(ctx, CreateInput{OrderID: orderID, TotalCents: 10000})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if transfer == nil || transfer.Status != enums.TransferStatusFailed {
		t.Fatalf("expected failed record, got %+v", transfer)
	}
	if transfer.FailureMessage == nil || *transfer.FailureMessage == "" {
		t.Fatal("expected failure message retained")
	}

	// A later delivery retries the failed record in place.
	gateway.transferErr = nil
	retried, err := svc.CreateForOrder(ctx, CreateInput{OrderID: orderID, TotalCents: 10000})
	if err != nil {
		t.Fatalf("retry create: %v", err)
	}
	if retried.Status != enums.TransferStatusCompleted || retried.FailureMessage != nil {
		t.Fatalf("expected retried transfer completed, got %+v", retried)
	}
	stored, _ := repo.FindTransferByOrderID(ctx, orderID)
	if stored.Status != enums.TransferStatusCompleted {
		t.Fatalf("stored record not updated: %+v", stored)
	}
}

func TestService_ReverseForRefund(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	gateway := &fakeGateway{}
	svc := newService(t, repo, gateway)
	ctx := context.Background()
	orderID := uuid.New()

	seed := &models.Transfer{
		ID:                uuid.New(),
		OrderID:           orderID,
		GatewayTransferID: "tr_fake_1",
		AmountCents:       400,
		Status:            enums.TransferStatusCompleted,
	}
	if err := repo.CreateTransfer(ctx, seed); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	transfer, err := svc.ReverseForRefund(ctx, ReverseInput{
		OrderID:       orderID,
		RefundedCents: 5000,
		TotalCents:    10000,
	})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if transfer.Status != enums.TransferStatusReversed || transfer.ReversedAmountCents != 200 {
		t.Fatalf("unexpected reversal state: %+v", transfer)
	}
	if gateway.lastReversal == nil || *gateway.lastReversal != 200 {
		t.Fatalf("gateway got reversal %v, want 200", gateway.lastReversal)
	}

	// Already reversed: nothing further happens.
	again, err := svc.ReverseForRefund(ctx, ReverseInput{OrderID: orderID, FullRefund: true})
	if err != nil {
		t.Fatalf("second reverse: %v", err)
	}
	if again.ReversedAmountCents != 200 || gateway.reversalCalls != 1 {
		t.Fatalf("reversal must not repeat: %+v calls=%d", again, gateway.reversalCalls)
	}
}

func TestService_ReverseForRefundNoTransfer(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	gateway := &fakeGateway{}
	svc := newService(t, repo, gateway)

	transfer, err := svc.ReverseForRefund(context.Background(), ReverseInput{
		OrderID:    uuid.New(),
		FullRefund: true,
	})
	if err != nil {
		t.Fatalf("reverse without transfer: %v", err)
	}
	if transfer != nil || gateway.reversalCalls != 0 {
		t.Fatalf("expected no-op, got %+v calls=%d", transfer, gateway.reversalCalls)
	}
}
