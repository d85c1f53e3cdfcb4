package services

import (
	"context"
	"strings"
	"time"

	"reservas/builders"
	"reservas/commands"
	"reservas/constants"
	"reservas/models"
	"reservas/services/logger"
	"reservas/services/notification"
	"reservas/types"

	"github.com/google/uuid"
)

type ImportServiceOptions struct {
	Store       ReservationStore
	Rates       RateStore
	Logs        ImportLogStore
	Checker     *AvailabilityChecker
	Pricing     *PricingAggregator
	Locker      Locker
	Cache       *ReservationCache
	Notifier    notification.Service
	Archiver    Archiver
	Logger      logger.Logger
	RoomLetters []string
	Location    *time.Location
}

// ImportService validates and commits spreadsheet batches. A batch is written
// in one transaction and only when it has no errors at all.
type ImportService struct {
	store     ReservationStore
	rates     RateStore
	logs      ImportLogStore
	pricing   *PricingAggregator
	locker    Locker
	cache     *ReservationCache
	notifier  notification.Service
	archiver  Archiver
	logger    logger.Logger
	validator *BulkImportValidator
	letters   []string
}

func NewImportService(opts ImportServiceOptions) *ImportService {
	s := &ImportService{
		store:     opts.Store,
		rates:     opts.Rates,
		logs:      opts.Logs,
		pricing:   opts.Pricing,
		locker:    opts.Locker,
		cache:     opts.Cache,
		notifier:  opts.Notifier,
		archiver:  opts.Archiver,
		logger:    opts.Logger,
		validator: NewBulkImportValidator(opts.Checker, opts.RoomLetters, opts.Location),
	}
	s.letters = s.validator.letters
	if s.locker == nil {
		s.locker = NoopLocker{}
	}
	if s.notifier == nil {
		s.notifier = notification.Nop{}
	}
	if s.archiver == nil {
		s.archiver = NoopArchiver{}
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

func (s *ImportService) snapshot(ctx context.Context, forUpdate bool) (Snapshot, error) {
	rooms, err := s.store.ActiveForResources(ctx, constants.ResourceRoom, s.letters, forUpdate)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.store.ActiveForResources(ctx, constants.ResourceEvent, []string{constants.DefaultEventHall}, forUpdate)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Rooms: rooms, Events: events}, nil
}

// Validate runs every check of Import without writing anything
func (s *ImportService) Validate(ctx context.Context, wb *Workbook) (*ValidationResult, error) {
	existing, err := s.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	result := s.validator.ValidateBatch(wb.Rooms, wb.Events, existing)
	s.logger.Info("Validated %s: %d room errors, %d event errors",
		wb.FileName, result.Summary.RoomErrorsCount, result.Summary.EventErrorsCount)
	return result, nil
}

// Import validates the workbook against the locked store state and, when it is
// clean, creates every room, event and linked room in a single transaction.
func (s *ImportService) Import(ctx context.Context, session types.Session, wb *Workbook) (*ValidationResult, error) {
	releaseRooms, err := s.locker.Lock(ctx, constants.ResourceRoom, s.letters)
	if err != nil {
		return nil, err
	}
	defer releaseRooms()
	releaseHall, err := s.locker.Lock(ctx, constants.ResourceEvent, []string{constants.DefaultEventHall})
	if err != nil {
		return nil, err
	}
	defer releaseHall()

	var result *ValidationResult
	batchID := uuid.NewString()
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.snapshot(ctx, true)
		if err != nil {
			return err
		}
		result = s.validator.ValidateBatch(wb.Rooms, wb.Events, existing)
		if !result.Valid() {
			return nil
		}
		return s.commit(ctx, batchID, result)
	})
	if err != nil {
		s.logger.Error("Import of %s failed, nothing saved: %v", wb.FileName, err)
		return nil, err
	}
	if !result.Valid() {
		s.logger.Info("Import of %s rejected: %d room errors, %d event errors",
			wb.FileName, result.Summary.RoomErrorsCount, result.Summary.EventErrorsCount)
		return result, nil
	}

	result.Committed = true
	result.BatchID = batchID
	if len(wb.Raw) > 0 {
		url, err := s.archiver.Archive(ctx, batchID, wb.FileName, wb.Raw)
		if err != nil {
			s.logger.Warn("Error archiving import %s: %v", batchID, err)
		}
		result.ArchiveURL = url
	}
	if s.logs != nil {
		entry := &models.ImportLog{
			BatchID:        batchID,
			UserID:         session.UserID,
			FileName:       wb.FileName,
			ArchiveURL:     result.ArchiveURL,
			RoomsReceived:  result.Summary.RoomsReceived,
			RoomsAdded:     result.Summary.RoomsAdded,
			EventsReceived: result.Summary.EventsReceived,
			EventsAdded:    result.Summary.EventsAdded,
			LinkedRooms:    result.Summary.LinkedRooms,
		}
		if err := s.logs.CreateImportLog(ctx, entry); err != nil {
			s.logger.Warn("Error writing import log %s: %v", batchID, err)
		}
	}

	s.cache.Invalidate(ctx)
	if err := s.notifier.Publish(notification.ReservationEvent{
		Type:  notification.Imported,
		Count: result.Summary.RoomsAdded + result.Summary.EventsAdded + result.Summary.LinkedRooms,
	}); err != nil {
		s.logger.Warn("Error publishing import %s: %v", batchID, err)
	}
	s.logger.Info("User %d imported %s as batch %s: %d rooms, %d events, %d linked rooms",
		session.UserID, wb.FileName, batchID,
		result.Summary.RoomsAdded, result.Summary.EventsAdded, result.Summary.LinkedRooms)
	return result, nil
}

func (s *ImportService) commit(ctx context.Context, batchID string, result *ValidationResult) error {
	var cmds []commands.ReservationCommand
	for _, p := range result.rooms {
		p.room.ImportBatchID = batchID
		if err := applyDerivedPrice(ctx, s.rates, s.pricing, p.room); err != nil {
			return err
		}
		cmds = append(cmds, commands.NewCreateReservationCommand(p.room, s.store))
	}
	if err := commands.Run(ctx, cmds...); err != nil {
		return err
	}
	result.Summary.RoomsAdded = len(result.rooms)

	for _, p := range result.events {
		event := p.event
		event.ImportBatchID = batchID
		if err := commands.NewCreateReservationCommand(event, s.store).Execute(ctx); err != nil {
			return err
		}
		result.Summary.EventsAdded++

		stay := models.RoomBlockRange(event)
		for _, letter := range p.letters {
			room := builders.NewReservationBuilder(constants.ResourceRoom).
				ForResource(letter).
				WithStatus(event.Status).
				WithRange(stay).
				WithContact(event.Contact).
				LinkedTo(&event.ID).
				FromImport(batchID).
				Build()
			if err := applyDerivedPrice(ctx, s.rates, s.pricing, room); err != nil {
				return err
			}
			if err := commands.NewCreateReservationCommand(room, s.store).Execute(ctx); err != nil {
				return err
			}
			result.Summary.LinkedRooms++
		}
	}
	return nil
}

// ListImports returns committed batches, newest first
func (s *ImportService) ListImports(ctx context.Context, page, limit int) ([]models.ImportLog, int64, error) {
	return s.logs.ListImportLogs(ctx, page, limit)
}

// RoomLetters returns the configured rooms
func (s *ImportService) RoomLetters() []string {
	return append([]string(nil), s.letters...)
}

// NormalizeFileName keeps only the base name of an uploaded file
func NormalizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "importacion.xlsx"
	}
	return name
}
