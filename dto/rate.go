package dto

import "github.com/shopspring/decimal"

type RateRequest struct {
	ResourceType string          `json:"resourceType" binding:"required,oneof=room event massage"`
	ResourceID   string          `json:"resourceId" binding:"required"`
	UnitType     string          `json:"unitType" binding:"required,oneof=per-night flat"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Capacity     int             `json:"capacity" binding:"min=0"`
}
