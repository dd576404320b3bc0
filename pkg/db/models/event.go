package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a performance/show that tiers and orders hang off. Only the
// fields the fulfillment pipeline reads are modeled here; event CRUD is
// owned by the admin surface.
type Event struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex"`
	Venue        string    `gorm:"column:venue;not null"`
	StartsAt     time.Time `gorm:"column:starts_at;not null"`
	TicketPrefix string    `gorm:"column:ticket_prefix;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
