package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"
	"reservas/repositories"
	"reservas/services/notification"

	"github.com/shopspring/decimal"
)

func newTestService(store *memStore, strict bool) (*ReservationService, *notification.Recorder) {
	rec := &notification.Recorder{}
	checker := NewAvailabilityChecker(AvailabilityOptions{Now: fixedNow("2024-05-01")})
	pricing := NewPricingAggregator(decimal.NewFromInt(1500))
	linker := NewEventRoomLinker(LinkerOptions{Store: store, Rates: store, Checker: checker, Pricing: pricing, Notifier: rec})
	svc := NewReservationService(ReservationServiceOptions{
		Store:        store,
		Rates:        store,
		Checker:      checker,
		Pricing:      pricing,
		Linker:       linker,
		Notifier:     rec,
		StrictStatus: strict,
	})
	return svc, rec
}

func newRoom(letter, start, end string) *models.Reservation {
	return &models.Reservation{
		ResourceType: constants.ResourceRoom,
		ResourceID:   letter,
		Kind:         "doble",
		StartAt:      day(start),
		EndAt:        day(end),
		Contact:      models.Contact{Name: "Ana", Email: "ana@example.com", Phone: "600123456"},
	}
}

func TestCreateReservation(t *testing.T) {
	store := newMemStore()
	svc, rec := newTestService(store, false)
	store.UpsertRate(context.Background(), &models.ResourceRate{
		ResourceType: constants.ResourceRoom, ResourceID: "doble", UnitType: constants.UnitPerNight, PricePerUnit: decimal.NewFromInt(2450),
	})

	res, err := svc.Create(context.Background(), staffSession, newRoom("f", "2024-06-01", "2024-06-04"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Conflict != nil {
		t.Fatalf("Create() Conflict = %v", res.Conflict)
	}
	r := res.Reservation
	if r.ID == 0 || r.ResourceID != "F" || r.Status != constants.StatusPending {
		t.Errorf("Create() = %+v", r)
	}
	if !r.Price.Equal(decimal.NewFromInt(7350)) {
		t.Errorf("Price = %s, want 7350 from the rate", r.Price)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != notification.Created {
		t.Errorf("published %+v, want one created event", rec.Events)
	}

	res, err = svc.Create(context.Background(), staffSession, newRoom("F", "2024-06-02", "2024-06-05"))
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if res.Conflict == nil || res.Conflict.ReservationIDs[0] != r.ID {
		t.Fatalf("second Create() Conflict = %+v, want conflict with %d", res.Conflict, r.ID)
	}
	if store.count(constants.ResourceRoom) != 1 {
		t.Errorf("conflicting create stored a row")
	}

	res, err = svc.Create(context.Background(), staffSession, newRoom("F", "2024-06-04", "2024-06-05"))
	if err != nil || res.Conflict != nil {
		t.Errorf("same-day turnover Create() = %+v, %v", res, err)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _ := newTestService(newMemStore(), false)

	tests := []struct {
		name   string
		mutate func(r *models.Reservation)
		code   errors.ErrorCode
	}{
		{"Reversed range", func(r *models.Reservation) { r.EndAt = r.StartAt.Add(-time.Hour) }, errors.ErrCodeInvalidRange},
		{"Unknown room", func(r *models.Reservation) { r.ResourceID = "Q" }, errors.ErrCodeInvalidResource},
		{"Bad email", func(r *models.Reservation) { r.Contact.Email = "nope" }, errors.ErrCodeInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRoom("A", "2024-06-01", "2024-06-02")
			tt.mutate(r)
			_, err := svc.Create(context.Background(), staffSession, r)
			appErr := errors.GetAppError(err)
			if appErr == nil || appErr.Code != tt.code {
				t.Fatalf("Create() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCreateCapacityExceeded(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	store.UpsertRate(context.Background(), &models.ResourceRate{
		ResourceType: constants.ResourceRoom, ResourceID: "doble", UnitType: constants.UnitPerNight, PricePerUnit: decimal.NewFromInt(2450), Capacity: 2,
	})

	r := newRoom("A", "2024-06-01", "2024-06-02")
	r.Guests = []string{"Ana", "Luis", "Eva"}
	_, err := svc.Create(context.Background(), staffSession, r)
	if appErr := errors.GetAppError(err); appErr == nil || appErr.Code != errors.ErrCodeCapacityExceeded {
		t.Fatalf("Create() error = %v, want capacity exceeded", err)
	}
}

func TestUpdateReservation(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	ctx := context.Background()

	first, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
	other, _ := svc.Create(ctx, staffSession, newRoom("B", "2024-06-01", "2024-06-03"))

	end := day("2024-06-04")
	res, err := svc.Update(ctx, staffSession, first.Reservation.ID, ReservationPatch{EndAt: &end})
	if err != nil || res.Conflict != nil {
		t.Fatalf("extending over itself = %+v, %v", res, err)
	}
	if !res.Reservation.Price.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("Price after extend = %s, want 3 nights x 1500", res.Reservation.Price)
	}

	b := "b"
	res, err = svc.Update(ctx, staffSession, first.Reservation.ID, ReservationPatch{ResourceID: &b})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if res.Conflict == nil || res.Conflict.ReservationIDs[0] != other.Reservation.ID {
		t.Fatalf("moving onto B Conflict = %+v", res.Conflict)
	}
	stored, _ := store.FindByID(ctx, first.Reservation.ID)
	if stored.ResourceID != "A" {
		t.Errorf("conflicting update changed the row to %s", stored.ResourceID)
	}

	manual := decimal.NewFromInt(999)
	res, _ = svc.Update(ctx, staffSession, first.Reservation.ID, ReservationPatch{Price: &manual})
	start := day("2024-06-02")
	res, _ = svc.Update(ctx, staffSession, first.Reservation.ID, ReservationPatch{StartAt: &start})
	if !res.Reservation.Price.Equal(manual) {
		t.Errorf("override lost: price = %s", res.Reservation.Price)
	}

	guests := []string{"Ana", "Luis", "Eva"}
	res, _ = svc.Update(ctx, staffSession, first.Reservation.ID, ReservationPatch{Guests: &guests})
	if res.Reservation.GuestCount != 3 {
		t.Errorf("GuestCount = %d, want 3", res.Reservation.GuestCount)
	}

	if _, err := svc.Update(ctx, staffSession, 999, ReservationPatch{}); !stderrors.Is(err, errors.ErrReservationNotFound) {
		t.Errorf("Update(999) error = %v, want not found", err)
	}
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Free transitions", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store, false)
		created, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
		id := created.Reservation.ID

		for _, status := range []string{"confirmada", "cancelada", "pendiente"} {
			res, err := svc.ChangeStatus(ctx, staffSession, id, status)
			if err != nil || res.Conflict != nil {
				t.Fatalf("ChangeStatus(%s) = %+v, %v", status, res, err)
			}
		}
	})

	t.Run("Strict cancelled is terminal", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store, true)
		created, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
		id := created.Reservation.ID

		if _, err := svc.ChangeStatus(ctx, staffSession, id, constants.StatusCancelled); err != nil {
			t.Fatalf("cancel error = %v", err)
		}
		_, err := svc.ChangeStatus(ctx, staffSession, id, constants.StatusConfirmed)
		if appErr := errors.GetAppError(err); appErr == nil || appErr.Code != errors.ErrCodeInvalidTransition {
			t.Fatalf("reopen error = %v, want invalid transition", err)
		}
	})

	t.Run("Reopening re-checks availability", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newTestService(store, false)
		first, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
		svc.ChangeStatus(ctx, staffSession, first.Reservation.ID, constants.StatusCancelled)
		if res, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-02", "2024-06-04")); res.Conflict != nil {
			t.Fatalf("Create() over a cancelled booking conflicted")
		}

		res, err := svc.ChangeStatus(ctx, staffSession, first.Reservation.ID, constants.StatusPending)
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		if res.Conflict == nil {
			t.Fatal("reopening onto a taken room should conflict")
		}
		stored, _ := store.FindByID(ctx, first.Reservation.ID)
		if stored.Status != constants.StatusCancelled {
			t.Errorf("status = %s, want still cancelled", stored.Status)
		}
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), false)
		_, err := svc.ChangeStatus(ctx, staffSession, 1, "archivada")
		if appErr := errors.GetAppError(err); appErr == nil || appErr.Code != errors.ErrCodeInvalidStatus {
			t.Fatalf("ChangeStatus() error = %v, want invalid status", err)
		}
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	for _, cascade := range []bool{true, false} {
		store := newMemStore()
		svc, rec := newTestService(store, false)
		eventID := seedEvent(store, "2024-07-01")
		if _, err := svc.linker.LinkRooms(ctx, staffSession, eventID, []string{"A", "B"}, nil); err != nil {
			t.Fatalf("LinkRooms() error = %v", err)
		}

		if err := svc.Delete(ctx, staffSession, eventID, cascade); err != nil {
			t.Fatalf("Delete(cascade=%v) error = %v", cascade, err)
		}
		if _, err := store.FindByID(ctx, eventID); err == nil {
			t.Errorf("cascade=%v: event still stored", cascade)
		}

		rooms := store.count(constants.ResourceRoom)
		if cascade && rooms != 0 {
			t.Errorf("cascade delete left %d rooms", rooms)
		}
		if !cascade {
			if rooms != 2 {
				t.Errorf("non-cascade delete left %d rooms, want 2", rooms)
			}
			if linked, _ := store.LinkedRooms(ctx, eventID); len(linked) != 0 {
				t.Errorf("non-cascade delete kept %d links", len(linked))
			}
		}
		if last := rec.Events[len(rec.Events)-1]; last.Type != notification.Deleted {
			t.Errorf("last event = %s, want deleted", last.Type)
		}
	}

	svc, _ := newTestService(newMemStore(), false)
	if err := svc.Delete(ctx, staffSession, 42, false); !stderrors.Is(err, errors.ErrReservationNotFound) {
		t.Errorf("Delete(42) error = %v, want not found", err)
	}
}

func TestAssign(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	ctx := context.Background()

	created, _ := svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
	staff := uint(5)
	r, err := svc.Assign(ctx, staffSession, created.Reservation.ID, &staff)
	if err != nil || r.AssignedTo == nil || *r.AssignedTo != staff {
		t.Fatalf("Assign() = %+v, %v", r, err)
	}
	r, _ = svc.Assign(ctx, staffSession, created.Reservation.ID, nil)
	if r.AssignedTo != nil {
		t.Error("Assign(nil) kept the assignee")
	}
}

func TestListUsesStore(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	ctx := context.Background()
	svc.Create(ctx, staffSession, newRoom("A", "2024-06-01", "2024-06-03"))
	svc.Create(ctx, staffSession, newRoom("B", "2024-06-01", "2024-06-03"))

	items, total, err := svc.List(ctx, repositories.ReservationFilter{ResourceType: constants.ResourceRoom, ResourceID: "b"})
	if err != nil || total != 1 || items[0].ResourceID != "B" {
		t.Errorf("List() = %+v, %d, %v", items, total, err)
	}
}

func TestExpirePending(t *testing.T) {
	store := newMemStore()
	svc, rec := newTestService(store, false)
	store.seed(roomRes(0, "A", constants.StatusPending, "2024-04-01", "2024-04-03"))
	store.seed(roomRes(0, "B", constants.StatusConfirmed, "2024-04-01", "2024-04-03"))

	n, err := svc.ExpirePending(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("ExpirePending() = %d, %v; want 1", n, err)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != notification.Expired {
		t.Errorf("published %+v, want one expired event", rec.Events)
	}
}

func TestAvailabilityQuery(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	store.seed(roomRes(0, "F", constants.StatusConfirmed, "2024-06-01", "2024-06-03"))

	ok, conflicts, err := svc.Availability(context.Background(), constants.ResourceRoom, "F",
		models.DateRange{Start: day("2024-06-02"), End: day("2024-06-05")}, 0)
	if err != nil || ok || len(conflicts) != 1 {
		t.Errorf("Availability() = %v, %d conflicts, %v; want false with 1", ok, len(conflicts), err)
	}

	_, _, err = svc.Availability(context.Background(), constants.ResourceRoom, "F",
		models.DateRange{Start: day("2024-06-05"), End: day("2024-06-02")}, 0)
	if appErr := errors.GetAppError(err); appErr == nil || appErr.Code != errors.ErrCodeInvalidRange {
		t.Errorf("Availability(reversed) error = %v, want invalid range", err)
	}
}

func TestEstimateUsesRatesThenFallback(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, false)
	store.UpsertRate(context.Background(), &models.ResourceRate{
		ResourceType: constants.ResourceRoom, ResourceID: "F", UnitType: constants.UnitPerNight, PricePerUnit: decimal.NewFromInt(2450),
	})

	window := &models.DateRange{Start: day("2024-06-01"), End: day("2024-06-03")}
	got, err := svc.Estimate(context.Background(), constants.ResourceRoom, []Selection{
		{ResourceID: "f"},
		{ResourceID: "G"},
		{ResourceID: "H", PricePerUnit: decimal.NewNullDecimal(decimal.NewFromInt(100)), UnitType: constants.UnitFlat},
	}, window)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	// 2450*2 + 1500*2 + 100
	if !got.Total.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("Total = %s, want 8000", got.Total)
	}
	if !got.PerItem[1].FallbackPrice {
		t.Error("G did not use the fallback price")
	}

	bad := &models.DateRange{Start: day("2024-06-03"), End: day("2024-06-01")}
	if _, err := svc.Estimate(context.Background(), constants.ResourceRoom, nil, bad); errors.GetAppError(err) == nil {
		t.Errorf("Estimate() with inverted window error = %v, want AppError", err)
	}
}
