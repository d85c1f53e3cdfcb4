package services

import (
	"strings"
	"time"

	"reservas/models"
)

// BoundaryPolicy decides whether a stay ending on day N blocks a stay starting on day N.
type BoundaryPolicy int

const (
	// SameDayTurnover treats ranges as half-open: check-out day N is free for a check-in on day N.
	SameDayTurnover BoundaryPolicy = iota
	// InclusiveBlocking treats both ends as occupied, so touching ranges conflict.
	InclusiveBlocking
)

// ParseBoundaryPolicy maps BOUNDARY_POLICY values; anything unknown is SameDayTurnover.
func ParseBoundaryPolicy(s string) BoundaryPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "inclusive") {
		return InclusiveBlocking
	}
	return SameDayTurnover
}

func (p BoundaryPolicy) String() string {
	if p == InclusiveBlocking {
		return "inclusive"
	}
	return "same-day-turnover"
}

type AvailabilityOptions struct {
	Policy   BoundaryPolicy
	Location *time.Location
	Now      func() time.Time
}

// AvailabilityChecker answers free/busy questions over a snapshot of reservations.
// It holds no state of its own and never touches storage.
type AvailabilityChecker struct {
	policy BoundaryPolicy
	loc    *time.Location
	now    func() time.Time
}

func NewAvailabilityChecker(opts AvailabilityOptions) *AvailabilityChecker {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AvailabilityChecker{policy: opts.Policy, loc: loc, now: now}
}

func (c *AvailabilityChecker) Policy() BoundaryPolicy {
	return c.policy
}

// Overlaps applies the boundary policy to two ranges.
func (c *AvailabilityChecker) Overlaps(a, b models.DateRange) bool {
	if c.policy == InclusiveBlocking {
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func (c *AvailabilityChecker) today() time.Time {
	return startOfDay(c.now().In(c.loc))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// InPast reports whether the range starts on a day before today.
func (c *AvailabilityChecker) InPast(r models.DateRange) bool {
	return startOfDay(r.Start.In(c.loc)).Before(c.today())
}

func sameResource(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Conflicts returns the blocking reservations of resourceID that overlap requested.
// Cancelled reservations never block; excludeID (0 for none) skips the reservation
// being edited.
func (c *AvailabilityChecker) Conflicts(resourceID string, requested models.DateRange, existing []models.Reservation, excludeID uint) ([]models.Reservation, error) {
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	var conflicts []models.Reservation
	for i := range existing {
		r := &existing[i]
		if !r.Blocking() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !sameResource(r.ResourceID, resourceID) {
			continue
		}
		if c.Overlaps(requested, r.Range()) {
			conflicts = append(conflicts, *r)
		}
	}
	return conflicts, nil
}

// IsAvailable reports whether resourceID is free for requested. An unknown
// resource has no reservations and is therefore available. Ranges starting
// before today are never available.
func (c *AvailabilityChecker) IsAvailable(resourceID string, requested models.DateRange, existing []models.Reservation, excludeID uint) (bool, error) {
	conflicts, err := c.Conflicts(resourceID, requested, existing, excludeID)
	if err != nil {
		return false, err
	}
	if c.InPast(requested) {
		return false, nil
	}
	return len(conflicts) == 0, nil
}

// DayStatus is one cell of the dashboard calendar
type DayStatus struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	ReservationID uint   `json:"reservationId,omitempty"`
	Guest         string `json:"guest,omitempty"`
}

// Calendar lists every day of month with the status of the reservation occupying
// resourceID that night, or "free".
func (c *AvailabilityChecker) Calendar(resourceID string, month time.Time, existing []models.Reservation) []DayStatus {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, c.loc)
	next := first.AddDate(0, 1, 0)

	var days []DayStatus
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		cell := DayStatus{Date: d.Format("2006-01-02"), Status: "free"}
		night := models.DateRange{Start: d, End: d.AddDate(0, 0, 1)}
		for i := range existing {
			r := &existing[i]
			if !r.Blocking() || !sameResource(r.ResourceID, resourceID) {
				continue
			}
			occupied := r.StartAt.Before(night.End) && night.Start.Before(r.EndAt)
			if !occupied && c.policy == InclusiveBlocking {
				// the check-out day counts as occupied
				occupied = startOfDay(r.EndAt.In(c.loc)).Equal(d)
			}
			if occupied {
				cell.Status = r.Status
				cell.ReservationID = r.ID
				cell.Guest = r.Contact.FullName()
				break
			}
		}
		days = append(days, cell)
	}
	return days
}
