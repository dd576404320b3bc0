package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/enums"
)

// Transfer records the proportional fee moved to the secondary payee for
// one order. AmountCents is fixed at creation as a percentage of the
// order total; a partial refund reverses it proportionally.
type Transfer struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID             uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uq_transfers_order_id"`
	GatewayTransferID   string               `gorm:"column:gateway_transfer_id"`
	AmountCents         int                  `gorm:"column:amount_cents;not null"`
	Status              enums.TransferStatus `gorm:"column:status;type:text;not null"`
	FailureMessage      *string              `gorm:"column:failure_message"`
	ReversalID          *string              `gorm:"column:reversal_id"`
	ReversedAmountCents int                  `gorm:"column:reversed_amount_cents;not null;default:0"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
