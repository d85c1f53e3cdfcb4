package services

import (
	stderrors "errors"
	"math/rand"
	"testing"
	"time"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedNow(s string) func() time.Time {
	return func() time.Time { return day(s) }
}

func roomRes(id uint, letter, status, start, end string) models.Reservation {
	return models.Reservation{
		ID:           id,
		ResourceType: constants.ResourceRoom,
		ResourceID:   letter,
		Status:       status,
		StartAt:      day(start),
		EndAt:        day(end),
	}
}

func TestIsAvailable(t *testing.T) {
	existing := []models.Reservation{
		roomRes(1, "F", constants.StatusConfirmed, "2024-06-01", "2024-06-03"),
		roomRes(2, "G", constants.StatusCancelled, "2024-06-01", "2024-06-03"),
		roomRes(3, "H", constants.StatusPending, "2024-06-10", "2024-06-12"),
	}

	tests := []struct {
		name      string
		policy    BoundaryPolicy
		resource  string
		start     string
		end       string
		excludeID uint
		want      bool
	}{
		{"Overlap", SameDayTurnover, "F", "2024-06-02", "2024-06-05", 0, false},
		{"Same day turnover allowed", SameDayTurnover, "F", "2024-06-03", "2024-06-05", 0, true},
		{"Inclusive blocks checkout day", InclusiveBlocking, "F", "2024-06-03", "2024-06-05", 0, false},
		{"Check-out on check-in day", SameDayTurnover, "F", "2024-05-30", "2024-06-01", 0, true},
		{"Inside existing", SameDayTurnover, "F", "2024-06-01", "2024-06-02", 0, false},
		{"Cancelled does not block", SameDayTurnover, "G", "2024-06-01", "2024-06-03", 0, true},
		{"Pending blocks", SameDayTurnover, "H", "2024-06-11", "2024-06-13", 0, false},
		{"Editing itself", SameDayTurnover, "F", "2024-06-01", "2024-06-04", 1, true},
		{"Letter is case-insensitive", SameDayTurnover, "f", "2024-06-02", "2024-06-05", 0, false},
		{"Unknown resource is free", SameDayTurnover, "Z", "2024-06-02", "2024-06-05", 0, true},
		{"Past start", SameDayTurnover, "A", "2024-05-01", "2024-05-03", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAvailabilityChecker(AvailabilityOptions{Policy: tt.policy, Now: fixedNow("2024-05-20")})
			got, err := c.IsAvailable(tt.resource, models.DateRange{Start: day(tt.start), End: day(tt.end)}, existing, tt.excludeID)
			if err != nil {
				t.Fatalf("IsAvailable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAvailableInvalidRange(t *testing.T) {
	c := NewAvailabilityChecker(AvailabilityOptions{Now: fixedNow("2024-05-20")})

	_, err := c.IsAvailable("F", models.DateRange{Start: day("2024-06-05"), End: day("2024-06-05")}, nil, 0)
	var rangeErr *errors.InvalidRangeError
	if !stderrors.As(err, &rangeErr) {
		t.Fatalf("IsAvailable() error = %v, want *InvalidRangeError", err)
	}
}

func TestConflictsListsBlockingReservations(t *testing.T) {
	c := NewAvailabilityChecker(AvailabilityOptions{Now: fixedNow("2024-05-20")})
	existing := []models.Reservation{
		roomRes(1, "F", constants.StatusConfirmed, "2024-06-01", "2024-06-03"),
		roomRes(2, "F", constants.StatusPending, "2024-06-04", "2024-06-06"),
		roomRes(3, "F", constants.StatusConfirmed, "2024-06-08", "2024-06-09"),
	}

	got, err := c.Conflicts("F", models.DateRange{Start: day("2024-06-02"), End: day("2024-06-05")}, existing, 0)
	if err != nil {
		t.Fatalf("Conflicts() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("Conflicts() = %+v, want reservations 1 and 2", got)
	}
}

// Random pairs of ranges: availability must match a direct interval comparison.
func TestIsAvailableMatchesIntervalOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := day("2030-01-01")

	for _, policy := range []BoundaryPolicy{SameDayTurnover, InclusiveBlocking} {
		c := NewAvailabilityChecker(AvailabilityOptions{Policy: policy, Now: fixedNow("2029-12-01")})
		for i := 0; i < 500; i++ {
			s1 := rng.Intn(30)
			e1 := s1 + 1 + rng.Intn(5)
			s2 := rng.Intn(30)
			e2 := s2 + 1 + rng.Intn(5)

			existing := []models.Reservation{{
				ID: 1, ResourceType: constants.ResourceRoom, ResourceID: "A", Status: constants.StatusConfirmed,
				StartAt: base.AddDate(0, 0, s1), EndAt: base.AddDate(0, 0, e1),
			}}
			requested := models.DateRange{Start: base.AddDate(0, 0, s2), End: base.AddDate(0, 0, e2)}

			overlap := s2 < e1 && s1 < e2
			if policy == InclusiveBlocking {
				overlap = s2 <= e1 && s1 <= e2
			}

			got, err := c.IsAvailable("A", requested, existing, 0)
			if err != nil {
				t.Fatalf("IsAvailable() error = %v", err)
			}
			if got == overlap {
				t.Fatalf("%s: existing [%d,%d) requested [%d,%d): available=%v, overlap=%v",
					policy, s1, e1, s2, e2, got, overlap)
			}
		}
	}
}

func TestCalendar(t *testing.T) {
	existing := []models.Reservation{
		roomRes(1, "F", constants.StatusConfirmed, "2024-06-01", "2024-06-03"),
		roomRes(2, "F", constants.StatusCancelled, "2024-06-10", "2024-06-12"),
	}

	tests := []struct {
		name   string
		policy BoundaryPolicy
		date   string
		want   string
	}{
		{"First night", SameDayTurnover, "2024-06-01", constants.StatusConfirmed},
		{"Second night", SameDayTurnover, "2024-06-02", constants.StatusConfirmed},
		{"Checkout day free", SameDayTurnover, "2024-06-03", "free"},
		{"Checkout day inclusive", InclusiveBlocking, "2024-06-03", constants.StatusConfirmed},
		{"Cancelled is free", SameDayTurnover, "2024-06-10", "free"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAvailabilityChecker(AvailabilityOptions{Policy: tt.policy})
			days := c.Calendar("F", day("2024-06-15"), existing)
			if len(days) != 30 {
				t.Fatalf("Calendar() returned %d days, want 30", len(days))
			}
			for _, d := range days {
				if d.Date == tt.date {
					if d.Status != tt.want {
						t.Errorf("Calendar()[%s] = %s, want %s", tt.date, d.Status, tt.want)
					}
					return
				}
			}
			t.Fatalf("Calendar() missing %s", tt.date)
		})
	}
}

func TestParseBoundaryPolicy(t *testing.T) {
	if ParseBoundaryPolicy("Inclusive") != InclusiveBlocking {
		t.Error("ParseBoundaryPolicy(Inclusive) should be InclusiveBlocking")
	}
	if ParseBoundaryPolicy("") != SameDayTurnover || ParseBoundaryPolicy("bogus") != SameDayTurnover {
		t.Error("ParseBoundaryPolicy should default to SameDayTurnover")
	}
}
