package builders

import (
	"strings"

	"reservas/constants"
	"reservas/models"

	"github.com/shopspring/decimal"
)

// ReservationBuilder assembles a reservation step by step
type ReservationBuilder struct {
	reservation *models.Reservation
}

// NewReservationBuilder starts a pending reservation of resourceType
func NewReservationBuilder(resourceType string) *ReservationBuilder {
	return &ReservationBuilder{
		reservation: &models.Reservation{
			ResourceType: resourceType,
			Status:       constants.StatusPending,
		},
	}
}

// ForResource sets the booked resource; room letters are upper-cased
func (b *ReservationBuilder) ForResource(resourceID string) *ReservationBuilder {
	resourceID = strings.TrimSpace(resourceID)
	if b.reservation.ResourceType == constants.ResourceRoom {
		resourceID = strings.ToUpper(resourceID)
	}
	b.reservation.ResourceID = resourceID
	return b
}

func (b *ReservationBuilder) WithKind(kind string) *ReservationBuilder {
	b.reservation.Kind = strings.TrimSpace(kind)
	return b
}

func (b *ReservationBuilder) WithTitle(title string) *ReservationBuilder {
	b.reservation.Title = strings.TrimSpace(title)
	return b
}

// WithStatus ignores an empty status
func (b *ReservationBuilder) WithStatus(status string) *ReservationBuilder {
	if status != "" {
		b.reservation.Status = status
	}
	return b
}

func (b *ReservationBuilder) WithRange(r models.DateRange) *ReservationBuilder {
	b.reservation.SetRange(r)
	return b
}

func (b *ReservationBuilder) WithContact(c models.Contact) *ReservationBuilder {
	c.Name = strings.TrimSpace(c.Name)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	b.reservation.Contact = c
	return b
}

// WithGuests sets the guest list; count is used only when the list is empty
func (b *ReservationBuilder) WithGuests(guests []string, count int) *ReservationBuilder {
	b.reservation.Guests = nil
	for _, g := range guests {
		b.reservation.AddGuest(g)
	}
	if len(b.reservation.Guests) == 0 {
		b.reservation.GuestCount = count
	}
	b.reservation.SyncGuestCount()
	return b
}

// WithPrice sets a manual price. A nil price leaves it to be derived from rates.
func (b *ReservationBuilder) WithPrice(price *decimal.Decimal) *ReservationBuilder {
	if price != nil {
		b.reservation.OverridePrice(*price)
	}
	return b
}

func (b *ReservationBuilder) AssignedTo(userID *uint) *ReservationBuilder {
	b.reservation.AssignedTo = userID
	return b
}

func (b *ReservationBuilder) LinkedTo(eventID *uint) *ReservationBuilder {
	b.reservation.LinkedEventID = eventID
	return b
}

func (b *ReservationBuilder) WithNotes(notes string) *ReservationBuilder {
	b.reservation.Notes = strings.TrimSpace(notes)
	return b
}

func (b *ReservationBuilder) FromImport(batchID string) *ReservationBuilder {
	b.reservation.ImportBatchID = batchID
	return b
}

// Build returns the reservation
func (b *ReservationBuilder) Build() *models.Reservation {
	return b.reservation
}
