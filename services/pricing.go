package services

import (
	"reservas/constants"
	"reservas/models"

	"github.com/shopspring/decimal"
)

// Selection is one resource picked in a booking form.
type Selection struct {
	ResourceID   string              `json:"resourceId"`
	PricePerUnit decimal.NullDecimal `json:"pricePerUnit"`
	UnitType     string              `json:"unitType"`
}

// ItemSubtotal is one line of a PriceBreakdown.
type ItemSubtotal struct {
	ResourceID    string          `json:"resourceId"`
	UnitType      string          `json:"unitType"`
	Units         int             `json:"units"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PendingDates  bool            `json:"pendingDates,omitempty"`
	FallbackPrice bool            `json:"fallbackPrice,omitempty"`
}

// PriceBreakdown is the display-only estimate for a selection.
type PriceBreakdown struct {
	PerItem      []ItemSubtotal  `json:"perItem"`
	Total        decimal.Decimal `json:"total"`
	PendingDates bool            `json:"pendingDates,omitempty"`
}

// PricingAggregator computes estimates. It is a pure function of its inputs and
// the configured fallback price.
type PricingAggregator struct {
	fallback decimal.Decimal
}

// NewPricingAggregator uses fallback for any selection without a price.
func NewPricingAggregator(fallback decimal.Decimal) *PricingAggregator {
	if fallback.IsNegative() {
		fallback = decimal.Zero
	}
	return &PricingAggregator{fallback: fallback}
}

func (p *PricingAggregator) Fallback() decimal.Decimal {
	return p.fallback
}

// Units returns how many units unitType covers over window. Per-night items
// without a window count one unit and report pendingDates.
func (p *PricingAggregator) Units(unitType string, window *models.DateRange) (units int, pendingDates bool) {
	if unitType != constants.UnitPerNight {
		return 1, false
	}
	if window == nil || window.Start.IsZero() || window.End.IsZero() {
		return 1, true
	}
	return window.Nights(), false
}

// ComputeTotal prices every selection over window (nil when no dates are chosen yet).
// Items are never omitted; negative prices count as zero.
func (p *PricingAggregator) ComputeTotal(selections []Selection, window *models.DateRange) PriceBreakdown {
	out := PriceBreakdown{
		PerItem: make([]ItemSubtotal, 0, len(selections)),
		Total:   decimal.Zero,
	}

	for _, s := range selections {
		unitType := s.UnitType
		if unitType != constants.UnitPerNight {
			unitType = constants.UnitFlat
		}

		price := p.fallback
		usedFallback := true
		if s.PricePerUnit.Valid {
			price = s.PricePerUnit.Decimal
			usedFallback = false
		}
		if price.IsNegative() {
			price = decimal.Zero
		}

		units, pending := p.Units(unitType, window)
		subtotal := price.Mul(decimal.NewFromInt(int64(units)))

		out.PerItem = append(out.PerItem, ItemSubtotal{
			ResourceID:    s.ResourceID,
			UnitType:      unitType,
			Units:         units,
			UnitPrice:     price,
			Subtotal:      subtotal,
			PendingDates:  pending,
			FallbackPrice: usedFallback,
		})
		out.Total = out.Total.Add(subtotal)
		if pending {
			out.PendingDates = true
		}
	}
	return out
}

// UnitTypeFor is the default unit for a resource type: rooms by the night, the rest flat.
func UnitTypeFor(resourceType string) string {
	if resourceType == constants.ResourceRoom {
		return constants.UnitPerNight
	}
	return constants.UnitFlat
}

// ReservationPrice derives the price of r from rate (nil when no rate is configured).
func (p *PricingAggregator) ReservationPrice(r *models.Reservation, rate *models.ResourceRate) decimal.Decimal {
	sel := Selection{ResourceID: r.ResourceID, UnitType: UnitTypeFor(r.ResourceType)}
	if rate != nil {
		sel.PricePerUnit = decimal.NullDecimal{Decimal: rate.PricePerUnit, Valid: true}
		if rate.UnitType != "" {
			sel.UnitType = rate.UnitType
		}
	}
	window := r.Range()
	return p.ComputeTotal([]Selection{sel}, &window).Total
}
