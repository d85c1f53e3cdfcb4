package controllers

import (
	"net/http"
	"strings"
	"time"

	"reservas/builders"
	"reservas/constants"
	"reservas/dto"
	"reservas/middleware"
	"reservas/models"
	"reservas/repositories"
	"reservas/response"
	"reservas/services"
	"reservas/services/logger"
	"reservas/validator"

	"github.com/gin-gonic/gin"
)

type ReservationControllerOptions struct {
	Service  *services.ReservationService
	Linker   *services.EventRoomLinker
	Location *time.Location
	Logger   logger.Logger
}

type ReservationController struct {
	service  *services.ReservationService
	linker   *services.EventRoomLinker
	location *time.Location
	logger   logger.Logger
}

func NewReservationController(opts ReservationControllerOptions) *ReservationController {
	c := &ReservationController{
		service:  opts.Service,
		linker:   opts.Linker,
		location: opts.Location,
		logger:   opts.Logger,
	}
	if c.location == nil {
		c.location = time.UTC
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	return c
}

// load fetches :id and checks it belongs to the :type of the path
func (rc *ReservationController) load(c *gin.Context) (*models.Reservation, bool) {
	resourceType, ok := pathType(c)
	if !ok {
		return nil, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	r, err := rc.service.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, rc.logger, err)
		return nil, false
	}
	if r.ResourceType != resourceType {
		response.NotFound(c, "Reserva no encontrada")
		return nil, false
	}
	return r, true
}

func (rc *ReservationController) List(c *gin.Context) {
	resourceType, ok := pathType(c)
	if !ok {
		return
	}
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	filter := repositories.ReservationFilter{
		ResourceType:  resourceType,
		ResourceID:    strings.TrimSpace(q.Resource),
		LinkedEventID: q.LinkedEventID,
		Page:          q.Page,
		Limit:         q.Limit,
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	if q.Status != "" {
		status, err := validator.NormalizeStatus(q.Status)
		if err != nil {
			handleError(c, rc.logger, err)
			return
		}
		filter.Status = status
	}
	switch q.AssignedTo {
	case "":
	case "me":
		session := middleware.GetSession(c)
		filter.AssignedTo = &session.UserID
	default:
		id, ok := parseUintQuery(q.AssignedTo)
		if !ok {
			response.BadRequest(c, "assignedTo no válido")
			return
		}
		filter.AssignedTo = &id
	}
	var err error
	if filter.From, err = parseDate(q.From, rc.location); err != nil {
		response.BadRequest(c, "Fecha 'from' no válida")
		return
	}
	if filter.To, err = parseDate(q.To, rc.location); err != nil {
		response.BadRequest(c, "Fecha 'to' no válida")
		return
	}

	items, total, err := rc.service.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	response.SuccessWithPagination(c, items, filter.Page, filter.Limit, total)
}

func (rc *ReservationController) Get(c *gin.Context) {
	r, ok := rc.load(c)
	if !ok {
		return
	}
	response.Success(c, r)
}

func (rc *ReservationController) Create(c *gin.Context) {
	resourceType, ok := pathType(c)
	if !ok {
		return
	}
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	r := builders.NewReservationBuilder(resourceType).
		ForResource(req.ResourceID).
		WithKind(req.Kind).
		WithTitle(req.Title).
		WithStatus(req.Status).
		WithRange(models.DateRange{Start: req.StartAt, End: req.EndAt}).
		WithContact(req.Contact.ToModel()).
		WithGuests(req.Guests, req.GuestCount).
		WithPrice(req.Price).
		AssignedTo(req.AssignedTo).
		WithNotes(req.Notes).
		Build()

	result, err := rc.service.Create(c.Request.Context(), middleware.GetSession(c), r)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if result.Conflict != nil {
		writeConflict(c, result.Conflict)
		return
	}
	response.Created(c, result.Reservation)
}

func (rc *ReservationController) Update(c *gin.Context) {
	current, ok := rc.load(c)
	if !ok {
		return
	}
	var req dto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	patch := services.ReservationPatch{
		ResourceID: req.ResourceID,
		Kind:       req.Kind,
		Title:      req.Title,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Guests:     req.Guests,
		GuestCount: req.GuestCount,
		Price:      req.Price,
		ResetPrice: req.ResetPrice,
		Notes:      req.Notes,
	}
	if req.Contact != nil {
		contact := req.Contact.ToModel()
		patch.Contact = &contact
	}

	result, err := rc.service.Update(c.Request.Context(), middleware.GetSession(c), current.ID, patch)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if result.Conflict != nil {
		writeConflict(c, result.Conflict)
		return
	}
	response.Success(c, result.Reservation)
}

func (rc *ReservationController) ChangeStatus(c *gin.Context) {
	current, ok := rc.load(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := rc.service.ChangeStatus(c.Request.Context(), middleware.GetSession(c), current.ID, req.Status)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if result.Conflict != nil {
		writeConflict(c, result.Conflict)
		return
	}
	response.Success(c, result.Reservation)
}

func (rc *ReservationController) Assign(c *gin.Context) {
	current, ok := rc.load(c)
	if !ok {
		return
	}
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	r, err := rc.service.Assign(c.Request.Context(), middleware.GetSession(c), current.ID, req.AssignedTo)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	response.Success(c, r)
}

func (rc *ReservationController) Delete(c *gin.Context) {
	current, ok := rc.load(c)
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"
	if err := rc.service.Delete(c.Request.Context(), middleware.GetSession(c), current.ID, cascade); err != nil {
		handleError(c, rc.logger, err)
		return
	}
	response.Success(c, gin.H{"id": current.ID, "cascade": cascade})
}

// LinkRooms handles POST /reservas/eventos/:id/habitaciones
func (rc *ReservationController) LinkRooms(c *gin.Context) {
	event, ok := rc.load(c)
	if !ok {
		return
	}
	if !event.IsEvent() {
		response.NotFound(c, "Evento no encontrado")
		return
	}
	var req dto.LinkRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	var window *models.DateRange
	if req.From != nil && req.To != nil {
		window = &models.DateRange{Start: *req.From, End: *req.To}
	} else if req.From != nil || req.To != nil {
		response.BadRequest(c, "Indique 'from' y 'to' o ninguno")
		return
	}

	result, err := rc.linker.LinkRooms(c.Request.Context(), middleware.GetSession(c), event.ID, req.Rooms, window)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if result.Conflict != nil {
		writeConflict(c, result.Conflict)
		return
	}
	c.JSON(http.StatusCreated, response.Response{
		Success: true,
		Message: "Habitaciones vinculadas",
		Data:    dto.LinkRoomsResponse{Event: result.Event, Rooms: result.Rooms},
	})
}

// LinkedRooms handles GET /reservas/eventos/:id/habitaciones
func (rc *ReservationController) LinkedRooms(c *gin.Context) {
	event, ok := rc.load(c)
	if !ok {
		return
	}
	if !event.IsEvent() {
		response.NotFound(c, "Evento no encontrado")
		return
	}
	rooms, err := rc.linker.LinkedRooms(c.Request.Context(), event.ID)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	if rooms == nil {
		rooms = []models.Reservation{}
	}
	response.Success(c, rooms)
}

// UnlinkRoom handles DELETE /reservas/habitaciones/:id/evento
func (rc *ReservationController) UnlinkRoom(c *gin.Context) {
	room, ok := rc.load(c)
	if !ok {
		return
	}
	if room.ResourceType != constants.ResourceRoom {
		response.NotFound(c, "Habitación no encontrada")
		return
	}
	r, err := rc.linker.UnlinkRoom(c.Request.Context(), middleware.GetSession(c), room.ID)
	if err != nil {
		handleError(c, rc.logger, err)
		return
	}
	response.Success(c, r)
}
