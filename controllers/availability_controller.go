package controllers

import (
	"strings"
	"time"

	"reservas/dto"
	"reservas/models"
	"reservas/response"
	"reservas/services"
	"reservas/services/logger"

	"github.com/gin-gonic/gin"
)

type AvailabilityController struct {
	service  *services.ReservationService
	location *time.Location
	logger   logger.Logger
}

func NewAvailabilityController(service *services.ReservationService, loc *time.Location, log logger.Logger) *AvailabilityController {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AvailabilityController{service: service, location: loc, logger: log}
}

// Check handles GET /disponibilidad. The answer is advisory; writes re-check.
func (ac *AvailabilityController) Check(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	resourceType, ok := parseResourceType(q.Type)
	if !ok {
		response.BadRequest(c, "Tipo de reserva no válido")
		return
	}
	from, err := parseDate(q.From, ac.location)
	if err != nil {
		response.BadRequest(c, "Fecha 'from' no válida")
		return
	}
	to, err := parseDate(q.To, ac.location)
	if err != nil {
		response.BadRequest(c, "Fecha 'to' no válida")
		return
	}

	available, conflicts, err := ac.service.Availability(c.Request.Context(), resourceType,
		strings.ToUpper(strings.TrimSpace(q.Resource)), models.DateRange{Start: *from, End: *to}, q.Exclude)
	if err != nil {
		handleError(c, ac.logger, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.Reservation{}
	}
	response.Success(c, dto.AvailabilityResponse{Available: available, Conflicts: conflicts})
}

// Calendar handles GET /disponibilidad/calendario?month=2024-06
func (ac *AvailabilityController) Calendar(c *gin.Context) {
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	resourceType, ok := parseResourceType(q.Type)
	if !ok {
		response.BadRequest(c, "Tipo de reserva no válido")
		return
	}
	month, err := time.ParseInLocation("2006-01", q.Month, ac.location)
	if err != nil {
		response.BadRequest(c, "Mes no válido, use AAAA-MM")
		return
	}

	days, err := ac.service.Calendar(c.Request.Context(), resourceType, strings.ToUpper(strings.TrimSpace(q.Resource)), month)
	if err != nil {
		handleError(c, ac.logger, err)
		return
	}
	response.Success(c, days)
}
