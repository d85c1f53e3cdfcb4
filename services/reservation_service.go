package services

import (
	"context"
	"strings"
	"time"

	"reservas/commands"
	"reservas/constants"
	"reservas/errors"
	"reservas/models"
	"reservas/repositories"
	"reservas/services/logger"
	"reservas/services/notification"
	"reservas/types"
	"reservas/validator"

	"github.com/shopspring/decimal"
)

// WriteResult is the outcome of a write that may hit a booking conflict.
// Exactly one of Reservation and Conflict is set.
type WriteResult struct {
	Reservation *models.Reservation
	Conflict    *errors.ConflictError
}

// ReservationPatch is a partial edit. Nil fields are left unchanged.
type ReservationPatch struct {
	ResourceID *string
	Kind       *string
	Title      *string
	StartAt    *time.Time
	EndAt      *time.Time
	Contact    *models.Contact
	Guests     *[]string
	GuestCount *int
	Price      *decimal.Decimal
	ResetPrice bool
	Notes      *string
}

type ReservationServiceOptions struct {
	Store        ReservationStore
	Rates        RateStore
	Checker      *AvailabilityChecker
	Pricing      *PricingAggregator
	Linker       *EventRoomLinker
	Locker       Locker
	Cache        *ReservationCache
	Notifier     notification.Service
	Logger       logger.Logger
	RoomLetters  []string
	StrictStatus bool
}

// ReservationService runs reservation CRUD. Every write re-checks availability
// inside its transaction and returns the full stored entity.
type ReservationService struct {
	store    ReservationStore
	rates    RateStore
	checker  *AvailabilityChecker
	pricing  *PricingAggregator
	linker   *EventRoomLinker
	locker   Locker
	cache    *ReservationCache
	notifier notification.Service
	logger   logger.Logger
	letters  []string
	strict   bool
}

func NewReservationService(opts ReservationServiceOptions) *ReservationService {
	s := &ReservationService{
		store:    opts.Store,
		rates:    opts.Rates,
		checker:  opts.Checker,
		pricing:  opts.Pricing,
		linker:   opts.Linker,
		locker:   opts.Locker,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		letters:  opts.RoomLetters,
		strict:   opts.StrictStatus,
	}
	if s.locker == nil {
		s.locker = NoopLocker{}
	}
	if s.notifier == nil {
		s.notifier = notification.Nop{}
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if len(s.letters) == 0 {
		s.letters = strings.Split(constants.DefaultRoomLetters, "")
	}
	return s
}

func (s *ReservationService) publish(kind string, r *models.Reservation) {
	if err := s.notifier.Publish(notification.ReservationEvent{
		Type:          kind,
		ReservationID: r.ID,
		ResourceType:  r.ResourceType,
		ResourceID:    r.ResourceID,
		Status:        r.Status,
	}); err != nil {
		s.logger.Warn("Error publishing %s of reservation %d: %v", kind, r.ID, err)
	}
}

func (s *ReservationService) prepare(r *models.Reservation) error {
	if r.IsEvent() && strings.TrimSpace(r.ResourceID) == "" {
		r.ResourceID = constants.DefaultEventHall
	}
	if r.IsRoom() {
		r.ResourceID = strings.ToUpper(strings.TrimSpace(r.ResourceID))
	}
	if r.Status == "" {
		r.Status = constants.StatusPending
	}
	status, err := validator.NormalizeStatus(r.Status)
	if err != nil {
		return err
	}
	r.Status = status
	r.SyncGuestCount()
	return validator.ValidateReservation(r, s.letters)
}

// checkAvailability re-reads the resource under FOR UPDATE and returns a conflict
// when r overlaps another blocking reservation or starts in the past.
func (s *ReservationService) checkAvailability(ctx context.Context, r *models.Reservation) (*errors.ConflictError, error) {
	if !r.Blocking() {
		return nil, nil
	}
	existing, err := s.store.ActiveForResources(ctx, r.ResourceType, []string{r.ResourceID}, true)
	if err != nil {
		return nil, err
	}
	blocking, err := s.checker.Conflicts(r.ResourceID, r.Range(), existing, r.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidRange, "Rango de fechas no válido", err)
	}
	if len(blocking) == 0 && !s.checker.InPast(r.Range()) {
		return nil, nil
	}
	conflict := &errors.ConflictError{ResourceType: r.ResourceType, Resources: []string{r.ResourceID}}
	for _, b := range blocking {
		conflict.ReservationIDs = append(conflict.ReservationIDs, b.ID)
	}
	return conflict, nil
}

// Create validates r, derives its price and stores it unless the resource is taken.
func (s *ReservationService) Create(ctx context.Context, session types.Session, r *models.Reservation) (*WriteResult, error) {
	if err := s.prepare(r); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, r.ResourceType, []string{r.ResourceID})
	if err != nil {
		return nil, err
	}
	defer release()

	result := &WriteResult{}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		conflict, err := s.checkAvailability(ctx, r)
		if err != nil {
			return err
		}
		if conflict != nil {
			result.Conflict = conflict
			return nil
		}
		if err := applyDerivedPrice(ctx, s.rates, s.pricing, r); err != nil {
			return err
		}
		return commands.NewCreateReservationCommand(r, s.store).Execute(ctx)
	})
	if err != nil {
		return nil, err
	}
	if result.Conflict != nil {
		return result, nil
	}

	result.Reservation = r
	s.cache.Invalidate(ctx)
	s.publish(notification.Created, r)
	s.logger.Info("User %d created %s reservation %d on %s", session.UserID, r.ResourceType, r.ID, r.ResourceID)
	return result, nil
}

// Get returns one reservation
func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// List returns a page of reservations, served from redis when cached.
func (s *ReservationService) List(ctx context.Context, f repositories.ReservationFilter) ([]models.Reservation, int64, error) {
	var page ReservationPage
	if s.cache.Get(ctx, f, &page) {
		return page.Items, page.Total, nil
	}

	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Reservation{}
	}
	s.cache.Set(ctx, f, ReservationPage{Items: items, Total: total})
	return items, total, nil
}

func applyPatch(r *models.Reservation, p ReservationPatch) {
	if p.ResourceID != nil {
		r.ResourceID = *p.ResourceID
	}
	if p.Kind != nil {
		r.Kind = strings.TrimSpace(*p.Kind)
	}
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.StartAt != nil {
		r.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		r.EndAt = *p.EndAt
	}
	if p.Contact != nil {
		r.Contact = *p.Contact
	}
	if p.Guests != nil {
		r.Guests = nil
		for _, g := range *p.Guests {
			r.AddGuest(g)
		}
		if len(r.Guests) == 0 {
			r.GuestCount = 0
		}
	}
	if p.GuestCount != nil && len(r.Guests) == 0 {
		r.GuestCount = *p.GuestCount
	}
	if p.ResetPrice {
		r.PriceOverridden = false
	}
	if p.Price != nil {
		r.OverridePrice(*p.Price)
	}
	if p.Notes != nil {
		r.Notes = strings.TrimSpace(*p.Notes)
	}
}

// Update applies a partial edit. Moving the reservation to another resource or
// range re-checks availability, excluding the reservation itself.
func (s *ReservationService) Update(ctx context.Context, session types.Session, id uint, patch ReservationPatch) (*WriteResult, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	ids := []string{current.ResourceID}
	if patch.ResourceID != nil {
		ids = append(ids, *patch.ResourceID)
	}
	release, err := s.locker.Lock(ctx, current.ResourceType, ids)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &WriteResult{}
	var updated *models.Reservation
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := s.store.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		before := *r
		applyPatch(r, patch)
		if err := s.prepare(r); err != nil {
			return err
		}

		moved := !strings.EqualFold(before.ResourceID, r.ResourceID) ||
			!before.StartAt.Equal(r.StartAt) || !before.EndAt.Equal(r.EndAt)
		if moved {
			conflict, err := s.checkAvailability(ctx, r)
			if err != nil {
				return err
			}
			if conflict != nil {
				result.Conflict = conflict
				return nil
			}
		}
		if err := applyDerivedPrice(ctx, s.rates, s.pricing, r); err != nil {
			return err
		}
		updated = r
		return commands.NewUpdateReservationCommand(r, s.store).Execute(ctx)
	})
	if err != nil {
		return nil, err
	}
	if result.Conflict != nil {
		return result, nil
	}

	result.Reservation = updated
	s.cache.Invalidate(ctx)
	s.publish(notification.Updated, updated)
	s.logger.Info("User %d updated reservation %d", session.UserID, id)
	return result, nil
}

// ChangeStatus moves a reservation through the status state machine. Leaving
// cancelled makes the reservation blocking again, so availability is re-checked.
func (s *ReservationService) ChangeStatus(ctx context.Context, session types.Session, id uint, status string) (*WriteResult, error) {
	target, err := validator.NormalizeStatus(status)
	if err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	release, err := s.locker.Lock(ctx, current.ResourceType, []string{current.ResourceID})
	if err != nil {
		return nil, err
	}
	defer release()

	result := &WriteResult{}
	var updated *models.Reservation
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := s.store.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		reopening := !r.Blocking()
		if err := models.Transition(r, target, s.strict); err != nil {
			return err
		}
		if reopening && r.Blocking() {
			conflict, err := s.checkAvailability(ctx, r)
			if err != nil {
				return err
			}
			if conflict != nil {
				result.Conflict = conflict
				return nil
			}
		}
		updated = r
		return commands.NewUpdateReservationCommand(r, s.store).Execute(ctx)
	})
	if err != nil {
		return nil, err
	}
	if result.Conflict != nil {
		return result, nil
	}

	result.Reservation = updated
	s.cache.Invalidate(ctx)
	s.publish(notification.Updated, updated)
	s.logger.Info("User %d set reservation %d to %s", session.UserID, id, updated.Status)
	return result, nil
}

// Assign sets or clears the staff member of a reservation. Events go through
// the linker so their rooms are never touched.
func (s *ReservationService) Assign(ctx context.Context, session types.Session, id uint, assignee *uint) (*models.Reservation, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if current.IsEvent() && s.linker != nil {
		return s.linker.ReassignEvent(ctx, session, id, assignee)
	}

	current.AssignedTo = assignee
	if err := commands.NewUpdateReservationCommand(current, s.store).Execute(ctx); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.publish(notification.Updated, current)
	return current, nil
}

// Delete removes a reservation. For events cascade also deletes the linked
// rooms; without it they are kept and detached.
func (s *ReservationService) Delete(ctx context.Context, session types.Session, id uint, cascade bool) error {
	var deleted *models.Reservation
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := s.store.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		deleted = r
		return commands.NewDeleteReservationCommand(id, r.IsEvent(), cascade, s.store).Execute(ctx)
	})
	if err != nil {
		return notFound(err)
	}

	s.cache.Invalidate(ctx)
	s.publish(notification.Deleted, deleted)
	s.logger.Info("User %d deleted reservation %d (cascade=%v)", session.UserID, id, cascade)
	return nil
}

// ExpirePending cancels pending reservations that ended before today.
func (s *ReservationService) ExpirePending(ctx context.Context) (int64, error) {
	n, err := s.store.ExpirePending(ctx, s.checker.today())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cache.Invalidate(ctx)
		if err := s.notifier.Publish(notification.ReservationEvent{Type: notification.Expired, Count: int(n)}); err != nil {
			s.logger.Warn("Error publishing expiry: %v", err)
		}
	}
	return n, nil
}

// Availability answers an advisory availability query against the stored reservations.
func (s *ReservationService) Availability(ctx context.Context, resourceType, resourceID string, window models.DateRange, excludeID uint) (bool, []models.Reservation, error) {
	if err := validator.ValidateResourceType(resourceType); err != nil {
		return false, nil, err
	}
	if err := window.Validate(); err != nil {
		return false, nil, errors.NewAppError(errors.ErrCodeInvalidRange, "Rango de fechas no válido", err)
	}
	existing, err := s.store.ActiveForResources(ctx, resourceType, []string{resourceID}, false)
	if err != nil {
		return false, nil, err
	}
	conflicts, err := s.checker.Conflicts(resourceID, window, existing, excludeID)
	if err != nil {
		return false, nil, err
	}
	available, err := s.checker.IsAvailable(resourceID, window, existing, excludeID)
	if err != nil {
		return false, nil, err
	}
	return available, conflicts, nil
}

// Calendar returns the per-day status of one resource for the month containing month.
func (s *ReservationService) Calendar(ctx context.Context, resourceType, resourceID string, month time.Time) ([]DayStatus, error) {
	if err := validator.ValidateResourceType(resourceType); err != nil {
		return nil, err
	}
	existing, err := s.store.ActiveForResources(ctx, resourceType, []string{resourceID}, false)
	if err != nil {
		return nil, err
	}
	return s.checker.Calendar(resourceID, month, existing), nil
}

// ListRates returns every configured rate
func (s *ReservationService) ListRates(ctx context.Context) ([]models.ResourceRate, error) {
	return s.rates.ListRates(ctx)
}

// SaveRate validates and upserts a rate
func (s *ReservationService) SaveRate(ctx context.Context, rate *models.ResourceRate) (*models.ResourceRate, error) {
	if err := validator.ValidateRate(rate); err != nil {
		return nil, err
	}
	if err := s.rates.UpsertRate(ctx, rate); err != nil {
		return nil, err
	}
	return s.rates.FindRate(ctx, rate.ResourceType, rate.ResourceID)
}

// Estimate prices a selection. Items without a price take the configured rate of
// their resource when one exists and the fallback otherwise.
func (s *ReservationService) Estimate(ctx context.Context, resourceType string, selections []Selection, window *models.DateRange) (PriceBreakdown, error) {
	if window != nil {
		if err := window.Validate(); err != nil {
			return PriceBreakdown{}, errors.NewAppError(errors.ErrCodeInvalidRange, "Rango de fechas no válido", err)
		}
	}
	priced := make([]Selection, len(selections))
	for i, sel := range selections {
		if !sel.PricePerUnit.Valid && s.rates != nil && resourceType != "" {
			rate, err := s.rates.FindRate(ctx, resourceType, sel.ResourceID)
			if err != nil {
				return PriceBreakdown{}, err
			}
			if rate != nil {
				sel.PricePerUnit = decimal.NewNullDecimal(rate.PricePerUnit)
				if sel.UnitType == "" {
					sel.UnitType = rate.UnitType
				}
			}
		}
		if sel.UnitType == "" {
			sel.UnitType = UnitTypeFor(resourceType)
		}
		priced[i] = sel
	}
	return s.pricing.ComputeTotal(priced, window), nil
}
