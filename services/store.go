package services

import (
	"context"
	"time"

	"reservas/models"
	"reservas/repositories"
)

// ReservationStore is the persistence the reservation services depend on.
// WithTransaction runs fn with the transaction carried in ctx, so every store
// call made with that ctx joins it.
type ReservationStore interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	ActiveForResources(ctx context.Context, resourceType string, resourceIDs []string, forUpdate bool) ([]models.Reservation, error)
	LinkedRooms(ctx context.Context, eventID uint) ([]models.Reservation, error)
	List(ctx context.Context, filter repositories.ReservationFilter) ([]models.Reservation, int64, error)
	Create(ctx context.Context, r *models.Reservation) error
	Save(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, id uint) error
	DeleteLinkedRooms(ctx context.Context, eventID uint) (int64, error)
	ClearLinks(ctx context.Context, eventID uint) (int64, error)
	ExpirePending(ctx context.Context, endedBefore time.Time) (int64, error)
}

// RateStore returns nil, nil from FindRate when no rate is configured.
type RateStore interface {
	FindRate(ctx context.Context, resourceType, resourceID string) (*models.ResourceRate, error)
	ListRates(ctx context.Context) ([]models.ResourceRate, error)
	UpsertRate(ctx context.Context, rate *models.ResourceRate) error
}

type ImportLogStore interface {
	CreateImportLog(ctx context.Context, log *models.ImportLog) error
	ListImportLogs(ctx context.Context, page, limit int) ([]models.ImportLog, int64, error)
}
