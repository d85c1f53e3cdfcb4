package controllers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reservas/constants"
	"reservas/dto"
	"reservas/errors"
	"reservas/response"
	"reservas/services/logger"
	"reservas/utils"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[errors.ErrorCode]int{
	errors.ErrCodeUnauthorized:      http.StatusUnauthorized,
	errors.ErrCodeInvalidToken:      http.StatusUnauthorized,
	errors.ErrCodeMissingToken:      http.StatusUnauthorized,
	errors.ErrCodeForbidden:         http.StatusForbidden,
	errors.ErrCodeNotFound:          http.StatusNotFound,
	errors.ErrCodeDBNotFound:        http.StatusNotFound,
	errors.ErrCodeConflict:          http.StatusConflict,
	errors.ErrCodeBatchInvalid:      http.StatusUnprocessableEntity,
	errors.ErrCodeInvalidRange:      http.StatusBadRequest,
	errors.ErrCodeInvalidStatus:     http.StatusBadRequest,
	errors.ErrCodeInvalidTransition: http.StatusBadRequest,
	errors.ErrCodeInvalidResource:   http.StatusBadRequest,
	errors.ErrCodeInvalidAmount:     http.StatusBadRequest,
	errors.ErrCodeInvalidEmail:      http.StatusBadRequest,
	errors.ErrCodeInvalidPhone:      http.StatusBadRequest,
	errors.ErrCodeCapacityExceeded:  http.StatusBadRequest,
	errors.ErrCodeBadWorkbook:       http.StatusBadRequest,
	errors.ErrCodeValidation:        http.StatusBadRequest,
	errors.ErrCodeRequiredField:     http.StatusBadRequest,
	errors.ErrCodeInvalidFormat:     http.StatusBadRequest,
}

// handleError writes err onto the envelope. Only errors without a known
// business meaning become a 500.
func handleError(c *gin.Context, log logger.Logger, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		if status, ok := statusByCode[appErr.Code]; ok {
			response.Error(c, status, appErr.Message, nil)
			return
		}
	}

	var rangeErr *errors.InvalidRangeError
	switch {
	case stderrors.As(err, &rangeErr):
		response.BadRequest(c, "La fecha de fin debe ser posterior a la de inicio")
	case stderrors.Is(err, errors.ErrReservationNotFound):
		response.NotFound(c, "Reserva no encontrada")
	case stderrors.Is(err, errors.ErrResourceBusy):
		response.Conflict(c, "El recurso está siendo modificado por otra persona, inténtelo de nuevo", nil)
	default:
		log.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		response.ServerError(c)
	}
}

func writeConflict(c *gin.Context, conflict *errors.ConflictError) {
	response.Conflict(c,
		fmt.Sprintf("No disponible en esas fechas: %s", strings.Join(conflict.Resources, ", ")),
		dto.ConflictResponse{
			ResourceType:   conflict.ResourceType,
			Resources:      conflict.Resources,
			ReservationIDs: conflict.ReservationIDs,
		})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "ID no válido")
		return 0, false
	}
	return uint(id), true
}

// parseResourceType accepts a path segment (habitaciones) or a type tag (room)
func parseResourceType(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := constants.PathTypes[s]; ok {
		return t, true
	}
	switch s {
	case constants.ResourceRoom, constants.ResourceEvent, constants.ResourceMassage:
		return s, true
	}
	return "", false
}

func pathType(c *gin.Context) (string, bool) {
	t, ok := parseResourceType(c.Param("type"))
	if !ok {
		response.NotFound(c, "Tipo de reserva no válido")
	}
	return t, ok
}

func parseDate(value string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := utils.ParseSheetDate(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func bindError(c *gin.Context, err error) {
	response.BadRequest(c, "Datos no válidos: "+err.Error())
}

func parseUintQuery(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
