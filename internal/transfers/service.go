package transfers

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	"github.com/gatecrest/boxoffice-backend/pkg/enums"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

// Gateway is the payment-provider surface the reconciliation flow
// needs. pkg/stripe.Client satisfies it.
type Gateway interface {
	CreateTransfer(ctx context.Context, amountCents int64, currency, destination, sourceCharge string, metadata map[string]string) (string, error)
	CreateReversal(ctx context.Context, transferID string, amountCents *int64, metadata map[string]string) (string, error)
}

type transferRepository interface {
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	UpdateTransfer(ctx context.Context, transfer *models.Transfer) error
	FindTransferByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Transfer, error)
}

// Service moves the platform fee to the partner account when an order
// completes and claws it back proportionally when money is refunded.
type Service interface {
	CreateForOrder(ctx context.Context, input CreateInput) (*models.Transfer, error)
	ReverseForRefund(ctx context.Context, input ReverseInput) (*models.Transfer, error)
}

// CreateInput identifies the order and the money to base the fee on.
type CreateInput struct {
	OrderID      uuid.UUID
	OrderCode    string
	SourceCharge string
	TotalCents   int
	Currency     enums.Currency
}

// ReverseInput identifies the refund a reversal mirrors. FullRefund
// reverses the remaining transfer regardless of RefundedCents.
type ReverseInput struct {
	OrderID       uuid.UUID
	RefundedCents int
	TotalCents    int
	FullRefund    bool
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Repo        transferRepository
	Gateway     Gateway
	Destination string
	FeePercent  float64
}

type service struct {
	repo        transferRepository
	gateway     Gateway
	destination string
	feePercent  float64
}

// NewService builds a transfer service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfer repository required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	if params.Destination == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfer destination account required")
	}
	if params.FeePercent < 0 || params.FeePercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fee percent out of range")
	}
	return &service{
		repo:        params.Repo,
		gateway:     params.Gateway,
		destination: params.Destination,
		feePercent:  params.FeePercent,
	}, nil
}

// CreateForOrder ensures the order's fee transfer exists. A completed or
// reversed record is returned as-is so event redelivery never double
// pays; a previously failed record is retried in place. Gateway failures
// are recorded with the provider's message and reported to the caller.
func (s *service) CreateForOrder(ctx context.Context, input CreateInput) (*models.Transfer, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	existing, err := s.repo.FindTransferByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != enums.TransferStatusFailed {
		return existing, nil
	}

	amount := FeeAmountCents(input.TotalCents, s.feePercent)
	if amount <= 0 {
		return nil, nil
	}

	record := existing
	if record == nil {
		record = &models.Transfer{
			ID:      uuid.New(),
			OrderID: input.OrderID,
		}
	}
	record.AmountCents = amount

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}

	gatewayID, gatewayErr := s.gateway.CreateTransfer(ctx, int64(amount), currency.String(), s.destination, input.SourceCharge, map[string]string{
		"order_id":   input.OrderID.String(),
		"order_code": input.OrderCode,
	})
	if gatewayErr != nil {
		msg := gatewayErr.Error()
		record.Status = enums.TransferStatusFailed
		record.FailureMessage = &msg
		if persistErr := s.persist(ctx, record, existing != nil); persistErr != nil {
			return nil, persistErr
		}
		return record, pkgerrors.Wrap(pkgerrors.CodeDependency, gatewayErr, "create gateway transfer")
	}

	record.GatewayTransferID = gatewayID
	record.Status = enums.TransferStatusCompleted
	record.FailureMessage = nil
	if err := s.persist(ctx, record, existing != nil); err != nil {
		return nil, err
	}
	return record, nil
}

// ReverseForRefund claws back the refunded share of a completed
// transfer. Orders without a completed transfer are left alone: there is
// nothing to reverse for a missing, failed, or already reversed record.
func (s *service) ReverseForRefund(ctx context.Context, input ReverseInput) (*models.Transfer, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	transfer, err := s.repo.FindTransferByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if transfer == nil || transfer.Status != enums.TransferStatusCompleted {
		return transfer, nil
	}

	amount := transfer.AmountCents
	if !input.FullRefund {
		amount = ReversalAmountCents(transfer.AmountCents, input.RefundedCents, input.TotalCents)
	}
	if amount <= 0 {
		return transfer, nil
	}

	amount64 := int64(amount)
	reversalID, gatewayErr := s.gateway.CreateReversal(ctx, transfer.GatewayTransferID, &amount64, map[string]string{
		"order_id": input.OrderID.String(),
	})
	if gatewayErr != nil {
		return transfer, pkgerrors.Wrap(pkgerrors.CodeDependency, gatewayErr, "reverse gateway transfer")
	}

	transfer.Status = enums.TransferStatusReversed
	transfer.ReversalID = &reversalID
	transfer.ReversedAmountCents = amount
	if err := s.repo.UpdateTransfer(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *service) persist(ctx context.Context, record *models.Transfer, exists bool) error {
	if exists {
		return s.repo.UpdateTransfer(ctx, record)
	}
	return s.repo.CreateTransfer(ctx, record)
}
