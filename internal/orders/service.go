package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service wraps order creation with the idempotency guarantee the
// storage layer enforces: one order per checkout session, no matter how
// many times the same completion event is delivered.
type Service interface {
	CreateOrder(ctx context.Context, order *models.Order) (bool, *models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateOrder persists the aggregate inside a transaction. When another
// delivery of the same session won the race, the stored order is
// reloaded and returned with created=false; the caller decides what
// replay work remains.
func (s *service) CreateOrder(ctx context.Context, order *models.Order) (bool, *models.Order, error) {
	if order == nil {
		return false, nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err == nil {
		return true, order, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return false, nil, err
	}

	stored, findErr := s.repo.FindBySessionID(ctx, order.CheckoutSessionID)
	if findErr != nil {
		return false, nil, findErr
	}
	if stored == nil {
		// Conflict without a visible row should not happen; surface the
		// original error.
		return false, nil, err
	}
	return false, stored, nil
}
