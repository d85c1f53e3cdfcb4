package models

import (
	stderrors "errors"
	"testing"
	"time"

	"reservas/constants"
	"reservas/errors"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"Valid", DateRange{day("2024-06-01"), day("2024-06-03")}, false},
		{"Equal", DateRange{day("2024-06-01"), day("2024-06-01")}, true},
		{"Reversed", DateRange{day("2024-06-03"), day("2024-06-01")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var rangeErr *errors.InvalidRangeError
				if !stderrors.As(err, &rangeErr) {
					t.Errorf("Validate() error type = %T, want *InvalidRangeError", err)
				}
			}
		})
	}
}

func TestDateRangeNights(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	tests := []struct {
		name string
		r    DateRange
		want int
	}{
		{"Three nights", DateRange{day("2024-06-01"), day("2024-06-04")}, 3},
		{"Partial day rounds up", DateRange{day("2024-06-01"), day("2024-06-01").Add(26 * time.Hour)}, 2},
		{"Short window is one", DateRange{day("2024-06-01"), day("2024-06-01").Add(2 * time.Hour)}, 1},
		{"Empty is one", DateRange{day("2024-06-01"), day("2024-06-01")}, 1},
		{"Event past midnight", DateRange{day("2024-06-01").Add(18 * time.Hour), day("2024-06-02").Add(2 * time.Hour)}, 1},
		{"Autumn clock change", DateRange{
			time.Date(2024, 10, 26, 0, 0, 0, 0, madrid),
			time.Date(2024, 10, 29, 0, 0, 0, 0, madrid),
		}, 3},
		{"Spring clock change", DateRange{
			time.Date(2024, 3, 30, 0, 0, 0, 0, madrid),
			time.Date(2024, 4, 1, 0, 0, 0, 0, madrid),
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGuestCountDerivation(t *testing.T) {
	r := &Reservation{GuestCount: 7}
	r.SyncGuestCount()
	if r.GuestCount != 7 {
		t.Fatalf("manual count = %d, want 7 while the list is empty", r.GuestCount)
	}

	names := []string{"Ana", "Luis", "Marta", "Pedro"}
	for i, n := range names {
		r.AddGuest(n)
		if r.GuestCount != len(r.Guests) || r.GuestCount != i+1 {
			t.Fatalf("after adding %s: count = %d, len = %d", n, r.GuestCount, len(r.Guests))
		}
	}

	r.RemoveGuest(1)
	if r.GuestCount != 3 || r.Guests[1] != "Marta" {
		t.Fatalf("after remove: count = %d, guests = %v", r.GuestCount, r.Guests)
	}

	r.AddGuest("   ")
	if r.GuestCount != 3 {
		t.Errorf("blank guest changed count to %d", r.GuestCount)
	}

	for len(r.Guests) > 0 {
		r.RemoveGuest(0)
		if len(r.Guests) > 0 && r.GuestCount != len(r.Guests) {
			t.Fatalf("count = %d, len = %d", r.GuestCount, len(r.Guests))
		}
	}
	if r.GuestCount != 0 {
		t.Errorf("count after clearing list = %d, want 0", r.GuestCount)
	}
}

func TestPriceOverrideSurvivesRecompute(t *testing.T) {
	r := &Reservation{}
	r.ApplyDerivedPrice(decimal.NewFromInt(4900))
	if !r.Price.Equal(decimal.NewFromInt(4900)) {
		t.Fatalf("derived price = %s", r.Price)
	}

	r.OverridePrice(decimal.NewFromInt(4000))
	r.ApplyDerivedPrice(decimal.NewFromInt(7350))
	if !r.Price.Equal(decimal.NewFromInt(4000)) || !r.PriceOverridden {
		t.Errorf("override lost: price = %s, overridden = %v", r.Price, r.PriceOverridden)
	}

	r.OverridePrice(decimal.NewFromInt(-10))
	if !r.Price.IsZero() {
		t.Errorf("negative override stored as %s, want 0", r.Price)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		strict  bool
		want    string
		wantErr bool
	}{
		{"Pending to confirmed", constants.StatusPending, constants.StatusConfirmed, false, constants.StatusConfirmed, false},
		{"Pending to cancelled", constants.StatusPending, constants.StatusCancelled, true, constants.StatusCancelled, false},
		{"Uncancel allowed by default", constants.StatusCancelled, constants.StatusConfirmed, false, constants.StatusConfirmed, false},
		{"Uncancel rejected when strict", constants.StatusCancelled, constants.StatusPending, true, constants.StatusCancelled, true},
		{"Confirmed back to pending when strict", constants.StatusConfirmed, constants.StatusPending, true, constants.StatusConfirmed, true},
		{"Confirmed to cancelled when strict", constants.StatusConfirmed, constants.StatusCancelled, true, constants.StatusCancelled, false},
		{"Same status is a no-op", constants.StatusConfirmed, constants.StatusConfirmed, true, constants.StatusConfirmed, false},
		{"Unknown target", constants.StatusPending, "archived", false, constants.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.from}
			err := Transition(r, tt.to, tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if r.Status != tt.want {
				t.Errorf("status = %s, want %s", r.Status, tt.want)
			}
		})
	}
}

func TestRoomBlockRange(t *testing.T) {
	ev := &Reservation{StartAt: day("2024-07-01").Add(17 * time.Hour), EndAt: day("2024-07-01").Add(23 * time.Hour)}
	got := RoomBlockRange(ev)
	if !got.Start.Equal(day("2024-07-01")) || !got.End.Equal(day("2024-07-02")) {
		t.Errorf("RoomBlockRange() = %v, want 2024-07-01..2024-07-02", got)
	}
}
