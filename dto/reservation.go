package dto

import (
	"time"

	"reservas/models"

	"github.com/shopspring/decimal"
)

// ContactRequest is the contact block of a reservation form
type ContactRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (c ContactRequest) ToModel() models.Contact {
	return models.Contact{Name: c.Name, LastName: c.LastName, Email: c.Email, Phone: c.Phone}
}

// CreateReservationRequest is the body of POST /reservas/:type
type CreateReservationRequest struct {
	ResourceID string           `json:"resourceId"`
	Kind       string           `json:"kind"`
	Title      string           `json:"title"`
	Status     string           `json:"status"`
	StartAt    time.Time        `json:"startAt" binding:"required"`
	EndAt      time.Time        `json:"endAt" binding:"required"`
	Contact    ContactRequest   `json:"contact"`
	AssignedTo *uint            `json:"assignedTo"`
	Guests     []string         `json:"guests"`
	GuestCount int              `json:"guestCount" binding:"min=0"`
	Price      *decimal.Decimal `json:"price"`
	Notes      string           `json:"notes"`
}

// UpdateReservationRequest is a partial edit; omitted fields keep their value
type UpdateReservationRequest struct {
	ResourceID *string          `json:"resourceId"`
	Kind       *string          `json:"kind"`
	Title      *string          `json:"title"`
	StartAt    *time.Time       `json:"startAt"`
	EndAt      *time.Time       `json:"endAt"`
	Contact    *ContactRequest  `json:"contact"`
	Guests     *[]string        `json:"guests"`
	GuestCount *int             `json:"guestCount" binding:"omitempty,min=0"`
	Price      *decimal.Decimal `json:"price"`
	ResetPrice bool             `json:"resetPrice"`
	Notes      *string          `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignRequest sets the staff member; null clears it
type AssignRequest struct {
	AssignedTo *uint `json:"assignedTo"`
}

// LinkRoomsRequest is the body of POST /reservas/eventos/:id/habitaciones.
// From and To override the default stay of the event night.
type LinkRoomsRequest struct {
	Rooms []string   `json:"rooms" binding:"required,min=1"`
	From  *time.Time `json:"from"`
	To    *time.Time `json:"to"`
}

// ConflictResponse names what blocked a write
type ConflictResponse struct {
	ResourceType   string   `json:"resourceType"`
	Resources      []string `json:"resources"`
	ReservationIDs []uint   `json:"reservationIds,omitempty"`
}

// LinkRoomsResponse is the event with the rooms created for it
type LinkRoomsResponse struct {
	Event *models.Reservation  `json:"event"`
	Rooms []models.Reservation `json:"rooms"`
}

// AvailabilityQuery holds the parameters of GET /disponibilidad
type AvailabilityQuery struct {
	Type     string `form:"type" binding:"required"`
	Resource string `form:"resource" binding:"required"`
	From     string `form:"from" binding:"required"`
	To       string `form:"to" binding:"required"`
	Exclude  uint   `form:"exclude"`
}

type AvailabilityResponse struct {
	Available bool                 `json:"available"`
	Conflicts []models.Reservation `json:"conflicts"`
}

// CalendarQuery holds the parameters of GET /disponibilidad/calendario
type CalendarQuery struct {
	Type     string `form:"type" binding:"required"`
	Resource string `form:"resource" binding:"required"`
	Month    string `form:"month" binding:"required"`
}
