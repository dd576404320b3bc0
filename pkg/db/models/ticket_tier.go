package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/enums"
)

// TicketTier is a sellable unit: a purchasable class of ticket with its
// own price and inventory. AvailableQuantity is mutated only through the
// inventory ledger's conditional updates, never by plain saves.
type TicketTier struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	EventID           uuid.UUID      `gorm:"column:event_id;type:uuid;not null;index"`
	Name              string         `gorm:"column:name;not null"`
	PriceCents        int            `gorm:"column:price_cents;not null"`
	Kind              enums.TierKind `gorm:"column:kind;type:text;not null;default:'regular'"`
	BundleMultiplier  *int           `gorm:"column:bundle_multiplier"`
	FallbackTierName  *string        `gorm:"column:fallback_tier_name"`
	MaxQuantity       int            `gorm:"column:max_quantity;not null"`
	AvailableQuantity int            `gorm:"column:available_quantity;not null"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Multiplier returns the effective-ticket multiplier for bundle tiers and
// falls back to the provided default when the tier does not declare one.
// Regular tiers always multiply by one.
func (t TicketTier) Multiplier(fallback int) int {
	if t.Kind != enums.TierKindBundle {
		return 1
	}
	if t.BundleMultiplier != nil && *t.BundleMultiplier > 0 {
		return *t.BundleMultiplier
	}
	if fallback > 0 {
		return fallback
	}
	return 1
}
