package services

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"

	"reservas/builders"
	"reservas/commands"
	"reservas/constants"
	"reservas/errors"
	"reservas/models"
	"reservas/services/logger"
	"reservas/services/notification"
	"reservas/types"
	"reservas/validator"
)

// LinkResult is the outcome of LinkRooms. Conflict is set, and Rooms empty,
// when any requested room was unavailable.
type LinkResult struct {
	Event    *models.Reservation   `json:"event"`
	Rooms    []models.Reservation  `json:"rooms"`
	Conflict *errors.ConflictError `json:"-"`
}

type LinkerOptions struct {
	Store       ReservationStore
	Rates       RateStore
	Checker     *AvailabilityChecker
	Pricing     *PricingAggregator
	Locker      Locker
	Cache       *ReservationCache
	Notifier    notification.Service
	Logger      logger.Logger
	RoomLetters []string
}

// EventRoomLinker books rooms on behalf of an event reservation
type EventRoomLinker struct {
	store    ReservationStore
	rates    RateStore
	checker  *AvailabilityChecker
	pricing  *PricingAggregator
	locker   Locker
	cache    *ReservationCache
	notifier notification.Service
	logger   logger.Logger
	letters  []string
}

func NewEventRoomLinker(opts LinkerOptions) *EventRoomLinker {
	l := &EventRoomLinker{
		store:    opts.Store,
		rates:    opts.Rates,
		checker:  opts.Checker,
		pricing:  opts.Pricing,
		locker:   opts.Locker,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		letters:  opts.RoomLetters,
	}
	if l.locker == nil {
		l.locker = NoopLocker{}
	}
	if l.notifier == nil {
		l.notifier = notification.Nop{}
	}
	if l.logger == nil {
		l.logger = logger.Nop()
	}
	if len(l.letters) == 0 {
		l.letters = strings.Split(constants.DefaultRoomLetters, "")
	}
	return l
}

// NormalizeLetters upper-cases, trims and de-duplicates room letters, keeping order.
func NormalizeLetters(letters []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range letters {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func notFound(err error) error {
	if stderrors.Is(err, errors.ErrReservationNotFound) {
		return errors.NewAppError(errors.ErrCodeNotFound, "Reserva no encontrada", err)
	}
	return err
}

// loadEvent fetches eventID and checks it is an event reservation
func (l *EventRoomLinker) loadEvent(ctx context.Context, eventID uint) (*models.Reservation, error) {
	event, err := l.store.FindByID(ctx, eventID)
	if err != nil {
		if stderrors.Is(err, errors.ErrReservationNotFound) {
			return nil, errors.NewAppError(errors.ErrCodeNotFound, "Evento no encontrado", errors.ErrEventNotFound)
		}
		return nil, err
	}
	if !event.IsEvent() {
		return nil, errors.NewAppError(errors.ErrCodeInvalidResource, "La reserva no es un evento", errors.ErrNotAnEvent)
	}
	return event, nil
}

// LinkRooms creates one room reservation per letter tied to eventID, or moves the
// room already linked to the event under that letter onto the new stay. Either
// every room is written or none is: when any letter is unavailable the result
// carries a ConflictError naming all of them and the store is left untouched.
// window overrides the default stay of the event night. Rooms linked under
// letters not listed are kept as they are.
func (l *EventRoomLinker) LinkRooms(ctx context.Context, session types.Session, eventID uint, letters []string, window *models.DateRange) (*LinkResult, error) {
	letters = NormalizeLetters(letters)
	if len(letters) == 0 {
		return nil, errors.NewAppError(errors.ErrCodeRequiredField, "Debe indicar al menos una habitación", nil)
	}
	for _, letter := range letters {
		if err := validator.ValidateRoomLetter(letter, l.letters); err != nil {
			return nil, err
		}
	}

	release, err := l.locker.Lock(ctx, constants.ResourceRoom, letters)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &LinkResult{}
	err = l.store.WithTransaction(ctx, func(ctx context.Context) error {
		event, err := l.loadEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.Blocking() {
			return errors.NewAppError(errors.ErrCodeInvalidStatus, "No se pueden vincular habitaciones a un evento cancelado", nil)
		}
		result.Event = event

		stay := models.RoomBlockRange(event)
		if window != nil {
			stay = *window
		}
		if err := stay.Validate(); err != nil {
			return errors.NewAppError(errors.ErrCodeInvalidRange, "Rango de fechas no válido", err)
		}

		existing, err := l.store.ActiveForResources(ctx, constants.ResourceRoom, letters, true)
		if err != nil {
			return err
		}
		linked, err := l.store.LinkedRooms(ctx, event.ID)
		if err != nil {
			return err
		}
		current := linkedByLetter(linked)

		conflict := &errors.ConflictError{ResourceType: constants.ResourceRoom}
		for _, letter := range letters {
			var self uint
			if room, ok := current[letter]; ok {
				self = room.ID
			}
			blocking, err := l.checker.Conflicts(letter, stay, existing, self)
			if err != nil {
				return err
			}
			if len(blocking) > 0 || l.checker.InPast(stay) {
				conflict.Resources = append(conflict.Resources, letter)
				for _, b := range blocking {
					conflict.ReservationIDs = append(conflict.ReservationIDs, b.ID)
				}
			}
		}
		if len(conflict.Resources) > 0 {
			sort.Strings(conflict.Resources)
			result.Conflict = conflict
			return nil
		}

		cmds := make([]commands.ReservationCommand, 0, len(letters))
		rooms := make([]*models.Reservation, 0, len(letters))
		for _, letter := range letters {
			if room, ok := current[letter]; ok {
				room.Status = event.Status
				room.SetRange(stay)
				if err := applyDerivedPrice(ctx, l.rates, l.pricing, room); err != nil {
					return err
				}
				rooms = append(rooms, room)
				cmds = append(cmds, commands.NewUpdateReservationCommand(room, l.store))
				continue
			}
			room := builders.NewReservationBuilder(constants.ResourceRoom).
				ForResource(letter).
				WithStatus(event.Status).
				WithRange(stay).
				WithContact(event.Contact).
				AssignedTo(event.AssignedTo).
				LinkedTo(&event.ID).
				Build()
			if err := applyDerivedPrice(ctx, l.rates, l.pricing, room); err != nil {
				return err
			}
			rooms = append(rooms, room)
			cmds = append(cmds, commands.NewCreateReservationCommand(room, l.store))
		}
		if err := commands.Run(ctx, cmds...); err != nil {
			return err
		}
		for _, r := range rooms {
			result.Rooms = append(result.Rooms, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Conflict != nil {
		l.logger.Info("Link rooms %v to event %d rejected by %s (request %s)", letters, eventID, result.Conflict, session.RequestID)
		return result, nil
	}

	l.cache.Invalidate(ctx)
	if err := l.notifier.Publish(notification.ReservationEvent{
		Type:          notification.Linked,
		ReservationID: eventID,
		ResourceType:  constants.ResourceEvent,
		Count:         len(result.Rooms),
	}); err != nil {
		l.logger.Warn("Error publishing link of event %d: %v", eventID, err)
	}
	l.logger.Info("User %d linked rooms %v to event %d", session.UserID, letters, eventID)
	return result, nil
}

// linkedByLetter indexes the rooms of an event by letter, preferring a blocking
// room when a letter was linked more than once.
func linkedByLetter(rooms []models.Reservation) map[string]*models.Reservation {
	out := make(map[string]*models.Reservation, len(rooms))
	for i := range rooms {
		r := &rooms[i]
		letter := strings.ToUpper(strings.TrimSpace(r.ResourceID))
		if prev, ok := out[letter]; ok && (prev.Blocking() || !r.Blocking()) {
			continue
		}
		out[letter] = r
	}
	return out
}

// UnlinkRoom detaches a room from its event. The room reservation itself stays.
func (l *EventRoomLinker) UnlinkRoom(ctx context.Context, session types.Session, roomID uint) (*models.Reservation, error) {
	var room *models.Reservation
	err := l.store.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := l.store.FindByID(ctx, roomID)
		if err != nil {
			return notFound(err)
		}
		if !r.IsRoom() {
			return errors.NewAppError(errors.ErrCodeInvalidResource, "La reserva no es una habitación", errors.ErrNotARoom)
		}
		if r.LinkedEventID == nil {
			return errors.NewAppError(errors.ErrCodeValidation, "La habitación no está vinculada a un evento", errors.ErrNotLinked)
		}
		r.LinkedEventID = nil
		room = r
		return commands.NewUpdateReservationCommand(r, l.store).Execute(ctx)
	})
	if err != nil {
		return nil, err
	}

	l.cache.Invalidate(ctx)
	if err := l.notifier.Publish(notification.ReservationEvent{
		Type:          notification.Unlinked,
		ReservationID: room.ID,
		ResourceType:  constants.ResourceRoom,
		ResourceID:    room.ResourceID,
	}); err != nil {
		l.logger.Warn("Error publishing unlink of room %d: %v", roomID, err)
	}
	l.logger.Info("User %d unlinked room reservation %d", session.UserID, roomID)
	return room, nil
}

// ReassignEvent changes the staff member of an event. Linked rooms keep their
// own assignment.
func (l *EventRoomLinker) ReassignEvent(ctx context.Context, session types.Session, eventID uint, assignee *uint) (*models.Reservation, error) {
	var event *models.Reservation
	err := l.store.WithTransaction(ctx, func(ctx context.Context) error {
		e, err := l.loadEvent(ctx, eventID)
		if err != nil {
			return err
		}
		e.AssignedTo = assignee
		event = e
		return commands.NewUpdateReservationCommand(e, l.store).Execute(ctx)
	})
	if err != nil {
		return nil, err
	}

	l.cache.Invalidate(ctx)
	if err := l.notifier.Publish(notification.ReservationEvent{
		Type:          notification.Updated,
		ReservationID: event.ID,
		ResourceType:  constants.ResourceEvent,
		Status:        event.Status,
	}); err != nil {
		l.logger.Warn("Error publishing reassignment of event %d: %v", eventID, err)
	}
	return event, nil
}

// LinkedRooms lists the rooms tied to eventID
func (l *EventRoomLinker) LinkedRooms(ctx context.Context, eventID uint) ([]models.Reservation, error) {
	if _, err := l.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return l.store.LinkedRooms(ctx, eventID)
}

// rateKey is the rate lookup key: the kind (room type, event type) when set,
// otherwise the resource id.
func rateKey(r *models.Reservation) string {
	if strings.TrimSpace(r.Kind) != "" {
		return r.Kind
	}
	return r.ResourceID
}

// applyDerivedPrice checks rate capacity and sets the derived price unless the
// reservation carries a manual one.
func applyDerivedPrice(ctx context.Context, rates RateStore, pricing *PricingAggregator, r *models.Reservation) error {
	var rate *models.ResourceRate
	if rates != nil {
		var err error
		rate, err = rates.FindRate(ctx, r.ResourceType, rateKey(r))
		if err != nil {
			return err
		}
	}
	r.SyncGuestCount()
	if rate != nil && rate.Capacity > 0 && r.GuestCount > rate.Capacity {
		return errors.NewAppError(errors.ErrCodeCapacityExceeded,
			"El número de invitados supera la capacidad de "+rateKey(r), nil)
	}
	r.ApplyDerivedPrice(pricing.ReservationPrice(r, rate))
	return nil
}
