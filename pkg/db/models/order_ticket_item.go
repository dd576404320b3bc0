package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderTicketItem snapshots one purchased ticket line. UnitPriceCents is
// the price actually paid, which can differ from the tier's list price
// under a promotional override. Bundle lines keep the multiplier that was
// in force at purchase time so refunds mirror the original debits even if
// the tier definition changes later.
type OrderTicketItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	TierID           uuid.UUID        `gorm:"column:tier_id;type:uuid;not null"`
	TierName         string           `gorm:"column:tier_name;not null"`
	Quantity         int              `gorm:"column:quantity;not null"`
	UnitPriceCents   int              `gorm:"column:unit_price_cents;not null"`
	IsBundle         bool             `gorm:"column:is_bundle;not null;default:false"`
	BundleMultiplier int              `gorm:"column:bundle_multiplier;not null;default:1"`
	Instances        []TicketInstance `gorm:"foreignKey:OrderTicketItemID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveQuantity is the number of admissions this line grants: the raw
// quantity for regular lines, quantity x multiplier for bundles. Ticket
// instance counts and fallback-tier debits both derive from it.
func (i OrderTicketItem) EffectiveQuantity() int {
	if !i.IsBundle {
		return i.Quantity
	}
	mult := i.BundleMultiplier
	if mult < 1 {
		mult = 1
	}
	return i.Quantity * mult
}
