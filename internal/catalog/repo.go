package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

// Repository exposes read-only access to the event/tier catalog. Tier
// availability is never written here; that is the inventory ledger's job.
type Repository interface {
	FindEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindTier(ctx context.Context, id uuid.UUID) (*models.TicketTier, error)
	FindTierByEventAndName(ctx context.Context, eventID uuid.UUID, name string) (*models.TicketTier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found").WithDetails(map[string]any{
			"event_id": id.String(),
		})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return &event, nil
}

func (r *repository) FindTier(ctx context.Context, id uuid.UUID) (*models.TicketTier, error) {
	var tier models.TicketTier
	err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket tier not found").WithDetails(map[string]any{
			"tier_id": id.String(),
		})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket tier")
	}
	return &tier, nil
}

func (r *repository) FindTierByEventAndName(ctx context.Context, eventID uuid.UUID, name string) (*models.TicketTier, error) {
	var tier models.TicketTier
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND name = ?", eventID, name).
		First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket tier not found").WithDetails(map[string]any{
			"event_id":  eventID.String(),
			"tier_name": name,
		})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket tier by name")
	}
	return &tier, nil
}
