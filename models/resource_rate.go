package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceRate is the price of one bookable kind: a room type, an event type or a massage type.
type ResourceRate struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	ResourceType string          `json:"resourceType" gorm:"uniqueIndex:idx_rate_kind;not null"`
	ResourceID   string          `json:"resourceId" gorm:"uniqueIndex:idx_rate_kind;not null"`
	UnitType     string          `json:"unitType" gorm:"not null"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" gorm:"type:numeric(12,2)"`
	Capacity     int             `json:"capacity"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}
