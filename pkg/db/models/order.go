package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/enums"
)

// Order is the aggregate root for a purchase. Exactly one row exists per
// gateway checkout session: checkout_session_id carries a unique index so
// a redelivered completion event can never create a second order. Orders
// are never hard-deleted; refunds and cancellations are status changes.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CheckoutSessionID string            `gorm:"column:checkout_session_id;not null;uniqueIndex:uq_orders_checkout_session_id"`
	PaymentIntentID   *string           `gorm:"column:payment_intent_id;uniqueIndex:uq_orders_payment_intent_id"`
	OrderCode         string            `gorm:"column:order_code;not null;uniqueIndex:uq_orders_order_code"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CustomerName      string            `gorm:"column:customer_name;not null"`
	CustomerEmail     string            `gorm:"column:customer_email;not null"`
	SubtotalCents     int               `gorm:"column:subtotal_cents;not null"`
	TaxCents          int               `gorm:"column:tax_cents;not null;default:0"`
	FeeCents          int               `gorm:"column:fee_cents;not null;default:0"`
	TotalCents        int               `gorm:"column:total_cents;not null"`
	Currency          enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	TicketItems       []OrderTicketItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	MerchItems        []OrderMerchItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transfer          *Transfer         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
