package dto

import "github.com/shopspring/decimal"

type EstimateItem struct {
	ResourceID   string           `json:"resourceId" binding:"required"`
	PricePerUnit *decimal.Decimal `json:"pricePerUnit"`
	UnitType     string           `json:"unitType" binding:"omitempty,oneof=per-night flat"`
}

// EstimateRequest is the body of POST /precios/estimar. Dates are optional:
// per-night items without them are priced for one night.
type EstimateRequest struct {
	ResourceType string         `json:"resourceType"`
	Items        []EstimateItem `json:"items" binding:"required,min=1,dive"`
	From         string         `json:"from"`
	To           string         `json:"to"`
}
