package models

import (
	"strings"
	"time"

	"reservas/constants"
	"reservas/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateRange is a half-open [Start, End) window. For rooms Start is the check-in
// day and End the check-out day; for events and massages it is a time window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate fails with *errors.InvalidRangeError unless End is strictly after Start.
func (r DateRange) Validate() error {
	if !r.End.After(r.Start) {
		return &errors.InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Nights is the number of started days covered by the range, never less than 1.
// Days are counted on the calendar of Start's location, so a DST change inside
// the range does not add or drop a night.
func (r DateRange) Nights() int {
	if !r.End.After(r.Start) {
		return 1
	}
	loc := r.Start.Location()
	start, end := r.Start, r.End.In(loc)

	n := int(calendarDate(end).Sub(calendarDate(start)) / (24 * time.Hour))
	if clockOf(end) > clockOf(start) {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// Contact is the person responsible for a reservation.
type Contact struct {
	Name     string `json:"name"`
	LastName string `json:"lastName,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// FullName joins name and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.LastName)
}

// Reservation is a booking of one resource. ResourceType selects which fields apply:
// rooms use ResourceID as the room letter and may carry LinkedEventID; events
// book DefaultEventHall and carry Title; massages book a cabin or therapist slot.
type Reservation struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	ResourceType    string          `json:"resourceType" gorm:"index:idx_resource;not null"`
	ResourceID      string          `json:"resourceId" gorm:"index:idx_resource;not null"`
	Kind            string          `json:"kind"`
	Title           string          `json:"title,omitempty"`
	Status          string          `json:"status" gorm:"index;not null;default:pending"`
	StartAt         time.Time       `json:"startAt"`
	EndAt           time.Time       `json:"endAt"`
	Contact         Contact         `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	AssignedTo      *uint           `json:"assignedTo,omitempty" gorm:"index"`
	LinkedEventID   *uint           `json:"linkedEventId,omitempty" gorm:"index"`
	Guests          []string        `json:"guests" gorm:"serializer:json"`
	GuestCount      int             `json:"guestCount"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	PriceOverridden bool            `json:"priceOverridden"`
	Notes           string          `json:"notes,omitempty"`
	ImportBatchID   string          `json:"importBatchId,omitempty" gorm:"index"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Range returns the reservation window.
func (r *Reservation) Range() DateRange {
	return DateRange{Start: r.StartAt, End: r.EndAt}
}

// SetRange replaces the reservation window.
func (r *Reservation) SetRange(dr DateRange) {
	r.StartAt = dr.Start
	r.EndAt = dr.End
}

// Blocking reports whether the reservation occupies its resource.
func (r *Reservation) Blocking() bool {
	return r.Status != constants.StatusCancelled
}

// IsRoom, IsEvent and IsMassage test the resource type tag.
func (r *Reservation) IsRoom() bool    { return r.ResourceType == constants.ResourceRoom }
func (r *Reservation) IsEvent() bool   { return r.ResourceType == constants.ResourceEvent }
func (r *Reservation) IsMassage() bool { return r.ResourceType == constants.ResourceMassage }

// SyncGuestCount derives GuestCount from Guests. A manually entered count is
// kept only while the guest list is empty.
func (r *Reservation) SyncGuestCount() {
	if len(r.Guests) > 0 {
		r.GuestCount = len(r.Guests)
	}
	if r.GuestCount < 0 {
		r.GuestCount = 0
	}
}

// AddGuest appends a guest name in entry order.
func (r *Reservation) AddGuest(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	r.Guests = append(r.Guests, name)
	r.SyncGuestCount()
}

// RemoveGuest drops the guest at index i. Removing the last guest leaves the
// count at zero until a manual number is entered again.
func (r *Reservation) RemoveGuest(i int) {
	if i < 0 || i >= len(r.Guests) {
		return
	}
	r.Guests = append(r.Guests[:i], r.Guests[i+1:]...)
	if len(r.Guests) == 0 {
		r.GuestCount = 0
		return
	}
	r.SyncGuestCount()
}

// OverridePrice sets a manual price that survives recomputation.
func (r *Reservation) OverridePrice(p decimal.Decimal) {
	if p.IsNegative() {
		p = decimal.Zero
	}
	r.Price = p
	r.PriceOverridden = true
}

// ApplyDerivedPrice sets a computed price unless a manual override is flagged.
func (r *Reservation) ApplyDerivedPrice(p decimal.Decimal) {
	if r.PriceOverridden {
		return
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	r.Price = p
}

func (r *Reservation) BeforeSave(tx *gorm.DB) error {
	r.SyncGuestCount()
	if r.Price.IsNegative() {
		r.Price = decimal.Zero
	}
	if r.Status == "" {
		r.Status = constants.StatusPending
	}
	return nil
}

// RoomBlockRange is the default stay for rooms linked to an event: the night of the event.
func RoomBlockRange(event *Reservation) DateRange {
	y, m, d := event.StartAt.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, event.StartAt.Location())
	return DateRange{Start: start, End: start.AddDate(0, 0, constants.LinkedRoomNights)}
}
