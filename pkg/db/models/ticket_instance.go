package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketInstance is a single numbered admission generated under a ticket
// line item. This service only ever creates instances unused; the gate
// scanner flips Used/UsedAt.
type TicketInstance struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderTicketItemID uuid.UUID  `gorm:"column:order_ticket_item_id;type:uuid;not null;index"`
	TicketNumber      string     `gorm:"column:ticket_number;not null;uniqueIndex:uq_ticket_instances_number"`
	Used              bool       `gorm:"column:used;not null;default:false"`
	UsedAt            *time.Time `gorm:"column:used_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
}
