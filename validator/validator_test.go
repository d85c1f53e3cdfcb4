package validator

import (
	"testing"
	"time"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"

	"github.com/shopspring/decimal"
)

var letters = []string{"A", "B", "F"}

func validRoom() *models.Reservation {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &models.Reservation{
		ResourceType: constants.ResourceRoom,
		ResourceID:   "F",
		Status:       constants.StatusPending,
		StartAt:      start,
		EndAt:        start.AddDate(0, 0, 2),
		Contact:      models.Contact{Name: "Ana", Email: "ana@example.com", Phone: "+34 600 123 456"},
	}
}

func TestValidateReservation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.Reservation)
		code   errors.ErrorCode
	}{
		{"Valid", func(r *models.Reservation) {}, ""},
		{"Unknown type", func(r *models.Reservation) { r.ResourceType = "spa" }, errors.ErrCodeInvalidResource},
		{"Unknown letter", func(r *models.Reservation) { r.ResourceID = "Z" }, errors.ErrCodeInvalidResource},
		{"Lower-case letter", func(r *models.Reservation) { r.ResourceID = "f" }, ""},
		{"Reversed range", func(r *models.Reservation) { r.EndAt = r.StartAt }, errors.ErrCodeInvalidRange},
		{"Bad status", func(r *models.Reservation) { r.Status = "maybe" }, errors.ErrCodeInvalidStatus},
		{"Spanish status", func(r *models.Reservation) { r.Status = "Confirmada" }, ""},
		{"No contact name", func(r *models.Reservation) { r.Contact.Name = " " }, errors.ErrCodeRequiredField},
		{"Bad email", func(r *models.Reservation) { r.Contact.Email = "ana@" }, errors.ErrCodeInvalidEmail},
		{"Bad phone", func(r *models.Reservation) { r.Contact.Phone = "abc" }, errors.ErrCodeInvalidPhone},
		{"Negative price", func(r *models.Reservation) { r.Price = decimal.NewFromInt(-1) }, errors.ErrCodeInvalidAmount},
		{"Event without title", func(r *models.Reservation) {
			r.ResourceType = constants.ResourceEvent
			r.ResourceID = constants.DefaultEventHall
		}, errors.ErrCodeRequiredField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRoom()
			tt.mutate(r)
			err := ValidateReservation(r, letters)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ValidateReservation() error = %v, want nil", err)
				}
				return
			}
			appErr := errors.GetAppError(err)
			if appErr == nil || appErr.Code != tt.code {
				t.Fatalf("ValidateReservation() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]string{
		"pendiente":  constants.StatusPending,
		"CANCELADA":  constants.StatusCancelled,
		" confirmed": constants.StatusConfirmed,
	}
	for in, want := range tests {
		got, err := NormalizeStatus(in)
		if err != nil || got != want {
			t.Errorf("NormalizeStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeStatus(""); err == nil {
		t.Error("NormalizeStatus(\"\") should fail")
	}
}

func TestValidateRate(t *testing.T) {
	rate := &models.ResourceRate{ResourceType: constants.ResourceRoom, ResourceID: "DOBLE", UnitType: constants.UnitPerNight, PricePerUnit: decimal.NewFromInt(2450)}
	if err := ValidateRate(rate); err != nil {
		t.Fatalf("ValidateRate() error = %v", err)
	}
	rate.UnitType = "hourly"
	if err := ValidateRate(rate); err == nil {
		t.Error("ValidateRate() accepted an unknown unit")
	}
}
