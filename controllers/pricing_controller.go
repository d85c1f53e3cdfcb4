package controllers

import (
	"time"

	"reservas/dto"
	"reservas/models"
	"reservas/response"
	"reservas/services"
	"reservas/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PricingController struct {
	service  *services.ReservationService
	location *time.Location
	logger   logger.Logger
}

func NewPricingController(service *services.ReservationService, loc *time.Location, log logger.Logger) *PricingController {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PricingController{service: service, location: loc, logger: log}
}

// Estimate handles POST /precios/estimar
func (pc *PricingController) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	resourceType := ""
	if req.ResourceType != "" {
		t, ok := parseResourceType(req.ResourceType)
		if !ok {
			response.BadRequest(c, "Tipo de reserva no válido")
			return
		}
		resourceType = t
	}

	from, err := parseDate(req.From, pc.location)
	if err != nil {
		response.BadRequest(c, "Fecha 'from' no válida")
		return
	}
	to, err := parseDate(req.To, pc.location)
	if err != nil {
		response.BadRequest(c, "Fecha 'to' no válida")
		return
	}
	var window *models.DateRange
	if from != nil && to != nil {
		window = &models.DateRange{Start: *from, End: *to}
	}

	selections := make([]services.Selection, 0, len(req.Items))
	for _, item := range req.Items {
		sel := services.Selection{ResourceID: item.ResourceID, UnitType: item.UnitType}
		if item.PricePerUnit != nil {
			sel.PricePerUnit = decimal.NewNullDecimal(*item.PricePerUnit)
		}
		selections = append(selections, sel)
	}

	breakdown, err := pc.service.Estimate(c.Request.Context(), resourceType, selections, window)
	if err != nil {
		handleError(c, pc.logger, err)
		return
	}
	response.Success(c, breakdown)
}
