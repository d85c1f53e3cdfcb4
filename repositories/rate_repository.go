package repositories

import (
	"context"
	stderrors "errors"
	"strings"

	"reservas/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRepository stores resource rates and import logs
type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// FindRate matches resourceID case-insensitively and returns nil when no rate exists.
func (r *RateRepository) FindRate(ctx context.Context, resourceType, resourceID string) (*models.ResourceRate, error) {
	var rate models.ResourceRate
	err := r.getDB(ctx).
		Where("resource_type = ? AND UPPER(resource_id) = ?", resourceType, strings.ToUpper(strings.TrimSpace(resourceID))).
		First(&rate).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

func (r *RateRepository) ListRates(ctx context.Context) ([]models.ResourceRate, error) {
	var rates []models.ResourceRate
	err := r.getDB(ctx).Order("resource_type ASC, resource_id ASC").Find(&rates).Error
	return rates, err
}

// UpsertRate inserts the rate or updates the one with the same type and id.
func (r *RateRepository) UpsertRate(ctx context.Context, rate *models.ResourceRate) error {
	rate.ResourceID = strings.ToUpper(strings.TrimSpace(rate.ResourceID))
	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"unit_type", "price_per_unit", "capacity", "updated_at"}),
	}).Create(rate).Error
}

func (r *RateRepository) CreateImportLog(ctx context.Context, log *models.ImportLog) error {
	return r.getDB(ctx).Create(log).Error
}

func (r *RateRepository) ListImportLogs(ctx context.Context, page, limit int) ([]models.ImportLog, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if page < 0 {
		page = 0
	}
	var total int64
	if err := r.getDB(ctx).Model(&models.ImportLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []models.ImportLog
	err := r.getDB(ctx).Order("created_at DESC, id DESC").Offset(page * limit).Limit(limit).Find(&logs).Error
	return logs, total, err
}
