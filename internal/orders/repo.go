package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatecrest/boxoffice-backend/pkg/db"
	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	"github.com/gatecrest/boxoffice-backend/pkg/enums"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

// Repository manages persistence for order aggregates and their fee
// transfers. Find helpers return (nil, nil) when no row matches so
// callers can branch on absence without error juggling.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	FindByOrderCode(ctx context.Context, code string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	UpdateTransfer(ctx context.Context, transfer *models.Transfer) error
	FindTransferByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Transfer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the aggregate in one pass: the order row plus its
// ticket lines, ticket instances, and merch lines via associations. A
// duplicate checkout session surfaces as CodeConflict.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "uq_orders_checkout_session_id") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already exists for checkout session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return nil
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.findOne(ctx, "checkout_session_id = ?", sessionID)
}

func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *repository) FindByOrderCode(ctx context.Context, code string) (*models.Order, error) {
	return r.findOne(ctx, "order_code = ?", code)
}

func (r *repository) findOne(ctx context.Context, query string, args ...any) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("TicketItems.Instances").
		Preload("MerchItems").
		Preload("Transfer").
		Where(query, args...).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *repository) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		if db.IsUniqueViolation(err, "uq_transfers_order_id") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "transfer already recorded for order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer")
	}
	return nil
}

func (r *repository) UpdateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Save(transfer).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer")
	}
	return nil
}

func (r *repository) FindTransferByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&transfer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
	}
	return &transfer, nil
}
