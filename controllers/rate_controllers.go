package controllers

import (
	"reservas/dto"
	"reservas/models"
	"reservas/response"
	"reservas/services"
	"reservas/services/logger"

	"github.com/gin-gonic/gin"
)

type RateController struct {
	service *services.ReservationService
	logger  logger.Logger
}

func NewRateController(service *services.ReservationService, log logger.Logger) *RateController {
	if log == nil {
		log = logger.Nop()
	}
	return &RateController{service: service, logger: log}
}

func (rc *RateController) List(c *gin.Context) {
	rates, err := rc.service.ListRates(c.Request.Context())
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if rates == nil {
		rates = []models.ResourceRate{}
	}
	response.Success(c, rates)
}

func (rc *RateController) Save(c *gin.Context) {
	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rate, err := rc.service.SaveRate(c.Request.Context(), &models.ResourceRate{
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		UnitType:     req.UnitType,
		PricePerUnit: req.PricePerUnit,
		Capacity:     req.Capacity,
	})
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	response.Success(c, rate)
}
