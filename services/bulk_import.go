package services

import (
	"fmt"
	"strings"
	"time"

	"reservas/builders"
	"reservas/constants"
	"reservas/errors"
	"reservas/models"
	"reservas/utils"
	"reservas/validator"
)

// NothingSavedMessage is shown whenever a batch is rejected
const NothingSavedMessage = "Ningún dato fue guardado"

type ImportSummary struct {
	RoomsReceived    int `json:"roomsReceived"`
	RoomsAdded       int `json:"roomsAdded"`
	RoomErrorsCount  int `json:"roomErrorsCount"`
	EventsReceived   int `json:"eventsReceived"`
	EventsAdded      int `json:"eventsAdded"`
	EventErrorsCount int `json:"eventErrorsCount"`
	LinkedRooms      int `json:"linkedRooms"`
}

type ImportErrors struct {
	Rooms  []errors.RowError `json:"rooms"`
	Events []errors.RowError `json:"events"`
}

// ValidationResult lists every problem found in a batch. A batch with any
// error is never committed.
type ValidationResult struct {
	Summary    ImportSummary `json:"summary"`
	Errors     ImportErrors  `json:"errors"`
	Warnings   []string      `json:"warnings,omitempty"`
	Committed  bool          `json:"committed"`
	BatchID    string        `json:"batchId,omitempty"`
	ArchiveURL string        `json:"archiveUrl,omitempty"`

	rooms  []plannedRoom
	events []plannedEvent
}

type plannedRoom struct {
	room *models.Reservation
	row  int
}

type plannedEvent struct {
	event   *models.Reservation
	letters []string
	row     int
}

// Valid reports whether the batch has no errors
func (r *ValidationResult) Valid() bool {
	return len(r.Errors.Rooms) == 0 && len(r.Errors.Events) == 0
}

func (r *ValidationResult) addRoomError(e errors.RowError) {
	e.Sheet = constants.SheetTagRooms
	r.Errors.Rooms = append(r.Errors.Rooms, e)
}

func (r *ValidationResult) addEventError(e errors.RowError) {
	e.Sheet = constants.SheetTagEvents
	r.Errors.Events = append(r.Errors.Events, e)
}

// Snapshot is the stored state a batch is validated against
type Snapshot struct {
	Rooms  []models.Reservation
	Events []models.Reservation
}

// BulkImportValidator checks a two-sheet batch without touching storage.
type BulkImportValidator struct {
	checker *AvailabilityChecker
	letters []string
	loc     *time.Location
}

func NewBulkImportValidator(checker *AvailabilityChecker, letters []string, loc *time.Location) *BulkImportValidator {
	if loc == nil {
		loc = time.UTC
	}
	if len(letters) == 0 {
		letters = strings.Split(constants.DefaultRoomLetters, "")
	}
	return &BulkImportValidator{checker: checker, letters: letters, loc: loc}
}

func appErrMessage(err error) string {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

func missingColumnErrors(sheet string, m HeaderMatch) []errors.RowError {
	var out []errors.RowError
	for _, miss := range m.Missing {
		msg := "Columna obligatoria no encontrada"
		if miss.Suggestion != "" {
			msg += fmt.Sprintf(". ¿Quiso decir «%s»?", miss.Suggestion)
		}
		out = append(out, errors.RowError{Sheet: sheet, RowNumber: 1, Field: miss.Column, Message: msg, Data: miss.Suggestion})
	}
	return out
}

func unknownColumnWarnings(sheetName string, m HeaderMatch) []string {
	var out []string
	for _, h := range m.Unknown {
		out = append(out, fmt.Sprintf("%s: columna desconocida «%s» ignorada", sheetName, h))
	}
	return out
}

// ValidateBatch checks every row of both sheets and collects all errors.
// Row errors carry the spreadsheet row number (the header is row 1).
func (v *BulkImportValidator) ValidateBatch(rooms, events Sheet, existing Snapshot) *ValidationResult {
	result := &ValidationResult{
		Errors: ImportErrors{Rooms: []errors.RowError{}, Events: []errors.RowError{}},
	}
	result.Summary.RoomsReceived = len(rooms.Rows)
	result.Summary.EventsReceived = len(events.Rows)

	roomMatch := MatchHeaders(rooms.Headers, constants.RoomRequiredColumns, constants.RoomOptionalColumns)
	eventMatch := MatchHeaders(events.Headers, constants.EventRequiredColumns, constants.EventOptionalColumns)
	if len(rooms.Rows) > 0 {
		for _, e := range missingColumnErrors(constants.SheetTagRooms, roomMatch) {
			result.addRoomError(e)
		}
		result.Warnings = append(result.Warnings, unknownColumnWarnings(constants.SheetRooms, roomMatch)...)
	}
	if len(events.Rows) > 0 {
		for _, e := range missingColumnErrors(constants.SheetTagEvents, eventMatch) {
			result.addEventError(e)
		}
		result.Warnings = append(result.Warnings, unknownColumnWarnings(constants.SheetEvents, eventMatch)...)
	}

	// letter -> row on the rooms sheet, taken from the raw cell so rows with
	// other errors, or a sheet missing other columns, still count
	roomSheetLetters := make(map[string]int)
	if _, ok := roomMatch.Columns[constants.ColRoom]; ok {
		for _, row := range rooms.Rows {
			letter := strings.ToUpper(roomMatch.Lookup(row.Values, constants.ColRoom))
			if letter == "" {
				continue
			}
			if _, ok := roomSheetLetters[letter]; !ok {
				roomSheetLetters[letter] = row.Number
			}
		}
	}
	if len(roomMatch.Missing) == 0 {
		for _, row := range rooms.Rows {
			r, rowErrs := v.parseRoomRow(roomMatch, row)
			for _, e := range rowErrs {
				result.addRoomError(e)
			}
			if len(rowErrs) == 0 {
				result.rooms = append(result.rooms, plannedRoom{room: r, row: row.Number})
			}
		}
	}

	if len(eventMatch.Missing) == 0 {
		eventLetters := make(map[string]int)
		for _, row := range events.Rows {
			planned, rowErrs := v.parseEventRow(eventMatch, row)
			for _, letter := range planned.letters {
				if roomRow, ok := roomSheetLetters[letter]; ok {
					rowErrs = append(rowErrs, errors.RowError{
						RowNumber: row.Number, Field: constants.ColRoom, Data: letter,
						Message: fmt.Sprintf("La habitación %s ya figura en la hoja %s (fila %d)", letter, constants.SheetRooms, roomRow),
					})
				}
				if other, ok := eventLetters[letter]; ok {
					rowErrs = append(rowErrs, errors.RowError{
						RowNumber: row.Number, Field: constants.ColRoom, Data: letter,
						Message: fmt.Sprintf("La habitación %s está repetida en el evento de la fila %d", letter, other),
					})
				} else {
					eventLetters[letter] = row.Number
				}
			}
			for _, e := range rowErrs {
				result.addEventError(e)
			}
			if len(rowErrs) == 0 {
				result.events = append(result.events, planned)
			}
		}
	}

	v.checkRoomAvailability(result, existing.Rooms)
	v.checkEventAvailability(result, existing)

	if !result.Valid() {
		result.rooms = nil
		result.events = nil
	}
	result.Summary.RoomErrorsCount = len(result.Errors.Rooms)
	result.Summary.EventErrorsCount = len(result.Errors.Events)
	return result
}

func required(m HeaderMatch, row SheetRow, cols ...string) []errors.RowError {
	var out []errors.RowError
	for _, col := range cols {
		if m.Lookup(row.Values, col) == "" {
			out = append(out, errors.RowError{RowNumber: row.Number, Field: col, Message: "Campo obligatorio vacío"})
		}
	}
	return out
}

func (v *BulkImportValidator) parseRoomRow(m HeaderMatch, row SheetRow) (*models.Reservation, []errors.RowError) {
	errs := required(m, row, constants.RoomRequiredColumns...)
	get := func(col string) string { return m.Lookup(row.Values, col) }
	fail := func(col, msg string) {
		errs = append(errs, errors.RowError{RowNumber: row.Number, Field: col, Message: msg, Data: get(col)})
	}

	b := builders.NewReservationBuilder(constants.ResourceRoom).
		ForResource(get(constants.ColRoom)).
		WithKind(get(constants.ColRoomType)).
		WithNotes(get(constants.ColNotes)).
		WithGuests(utils.SplitList(get(constants.ColGuests)), 0).
		WithContact(models.Contact{
			Name:     get(constants.ColContactName),
			LastName: get(constants.ColContactLast),
			Email:    get(constants.ColContactEmail),
			Phone:    get(constants.ColContactPhone),
		})

	if letter := get(constants.ColRoom); letter != "" {
		if err := validator.ValidateRoomLetter(letter, v.letters); err != nil {
			fail(constants.ColRoom, appErrMessage(err))
		}
	}

	var start, end time.Time
	var err error
	if s := get(constants.ColCheckIn); s != "" {
		if start, err = utils.ParseSheetDate(s, v.loc); err != nil {
			fail(constants.ColCheckIn, "Fecha no válida")
		}
	}
	if s := get(constants.ColCheckOut); s != "" {
		if end, err = utils.ParseSheetDate(s, v.loc); err != nil {
			fail(constants.ColCheckOut, "Fecha no válida")
		}
	}
	if !start.IsZero() && !end.IsZero() {
		dr := models.DateRange{Start: start, End: end}
		if dr.Validate() != nil {
			fail(constants.ColCheckOut, "La fecha de salida debe ser posterior a la de entrada")
		} else {
			b.WithRange(dr)
		}
	}

	if s := get(constants.ColTotalPrice); s != "" {
		p, err := utils.ParseSheetNumber(s)
		switch {
		case err != nil:
			fail(constants.ColTotalPrice, "Número no válido")
		case p.IsNegative():
			fail(constants.ColTotalPrice, "El precio no puede ser negativo")
		default:
			b.WithPrice(&p)
		}
	}

	if s := get(constants.ColStatus); s != "" {
		status, err := validator.NormalizeStatus(s)
		if err != nil {
			fail(constants.ColStatus, appErrMessage(err))
		}
		b.WithStatus(status)
	}
	if s := get(constants.ColContactEmail); s != "" {
		if err := validator.ValidateEmail(s); err != nil {
			fail(constants.ColContactEmail, appErrMessage(err))
		}
	}
	if s := get(constants.ColContactPhone); s != "" {
		if err := validator.ValidatePhone(s); err != nil {
			fail(constants.ColContactPhone, appErrMessage(err))
		}
	}
	return b.Build(), errs
}

func (v *BulkImportValidator) parseEventRow(m HeaderMatch, row SheetRow) (plannedEvent, []errors.RowError) {
	cols := make([]string, 0, len(constants.EventRequiredColumns))
	for _, c := range constants.EventRequiredColumns {
		if c != constants.ColRoom {
			cols = append(cols, c)
		}
	}
	errs := required(m, row, cols...)
	get := func(col string) string { return m.Lookup(row.Values, col) }
	fail := func(col, msg string) {
		errs = append(errs, errors.RowError{RowNumber: row.Number, Field: col, Message: msg, Data: get(col)})
	}

	b := builders.NewReservationBuilder(constants.ResourceEvent).
		ForResource(constants.DefaultEventHall).
		WithTitle(get(constants.ColEventName)).
		WithKind(get(constants.ColEventType)).
		WithNotes(get(constants.ColNotes)).
		WithContact(models.Contact{
			Name:     get(constants.ColContactName),
			LastName: get(constants.ColContactLast),
			Email:    get(constants.ColContactEmail),
			Phone:    get(constants.ColContactPhone),
		})

	if s := get(constants.ColContactEmail); s != "" {
		if err := validator.ValidateEmail(s); err != nil {
			fail(constants.ColContactEmail, appErrMessage(err))
		}
	}
	if s := get(constants.ColContactPhone); s != "" {
		if err := validator.ValidatePhone(s); err != nil {
			fail(constants.ColContactPhone, appErrMessage(err))
		}
	}

	var date time.Time
	var startOK, endOK bool
	var from, to time.Duration
	var err error
	if s := get(constants.ColEventDate); s != "" {
		if date, err = utils.ParseSheetDate(s, v.loc); err != nil {
			fail(constants.ColEventDate, "Fecha no válida")
		}
	}
	if s := get(constants.ColStartTime); s != "" {
		if from, err = utils.ParseSheetTime(s); err != nil {
			fail(constants.ColStartTime, "Hora no válida")
		} else {
			startOK = true
		}
	}
	if s := get(constants.ColEndTime); s != "" {
		if to, err = utils.ParseSheetTime(s); err != nil {
			fail(constants.ColEndTime, "Hora no válida")
		} else {
			endOK = true
		}
	}
	if !date.IsZero() && startOK && endOK {
		start, end := utils.EventWindow(date, from, to)
		b.WithRange(models.DateRange{Start: start, End: end})
	}

	if s := get(constants.ColEventPrice); s != "" {
		p, err := utils.ParseSheetNumber(s)
		switch {
		case err != nil:
			fail(constants.ColEventPrice, "Número no válido")
		case p.IsNegative():
			fail(constants.ColEventPrice, "El precio no puede ser negativo")
		default:
			b.WithPrice(&p)
		}
	}
	if s := get(constants.ColGuestCount); s != "" {
		n, err := utils.ParseSheetInt(s)
		if err != nil {
			fail(constants.ColGuestCount, "Número de invitados no válido")
		}
		b.WithGuests(nil, n)
	}
	if s := get(constants.ColStatus); s != "" {
		status, err := validator.NormalizeStatus(s)
		if err != nil {
			fail(constants.ColStatus, appErrMessage(err))
		}
		b.WithStatus(status)
	}

	planned := plannedEvent{event: b.Build(), row: row.Number}
	seen := make(map[string]bool)
	for _, letter := range utils.SplitList(get(constants.ColRoom)) {
		letter = strings.ToUpper(letter)
		if err := validator.ValidateRoomLetter(letter, v.letters); err != nil {
			errs = append(errs, errors.RowError{RowNumber: row.Number, Field: constants.ColRoom, Message: appErrMessage(err), Data: letter})
			continue
		}
		if !seen[letter] {
			seen[letter] = true
			planned.letters = append(planned.letters, letter)
		}
	}
	return planned, errs
}

func conflictMessage(resource string, blocking []models.Reservation) string {
	ids := make([]string, 0, len(blocking))
	for _, b := range blocking {
		ids = append(ids, fmt.Sprintf("#%d", b.ID))
	}
	return fmt.Sprintf("%s no está disponible en esas fechas (reserva %s)", resource, strings.Join(ids, ", "))
}

// checkRoomAvailability flags room rows that overlap a stored reservation or an
// earlier row of the same batch.
func (v *BulkImportValidator) checkRoomAvailability(result *ValidationResult, stored []models.Reservation) {
	var accepted []plannedRoom
	for _, p := range result.rooms {
		r := p.room
		if !r.Blocking() {
			continue
		}
		blocking, err := v.checker.Conflicts(r.ResourceID, r.Range(), stored, 0)
		if err != nil {
			continue
		}
		if len(blocking) > 0 {
			result.addRoomError(errors.RowError{
				RowNumber: p.row, Field: "disponibilidad", Data: r.ResourceID,
				Message: conflictMessage("La habitación "+r.ResourceID, blocking),
			})
			continue
		}
		if prev, ok := v.overlapsEarlier(accepted, r.ResourceID, r.Range()); ok {
			result.addRoomError(errors.RowError{
				RowNumber: p.row, Field: "disponibilidad", Data: r.ResourceID,
				Message: fmt.Sprintf("Se solapa con la fila %d de la hoja %s", prev, constants.SheetRooms),
			})
			continue
		}
		accepted = append(accepted, p)
	}
}

func (v *BulkImportValidator) overlapsEarlier(accepted []plannedRoom, resourceID string, dr models.DateRange) (int, bool) {
	for _, prev := range accepted {
		if sameResource(prev.room.ResourceID, resourceID) && v.checker.Overlaps(prev.room.Range(), dr) {
			return prev.row, true
		}
	}
	return 0, false
}

// checkEventAvailability flags events whose hall or linked rooms are taken.
// Linked letters never appear on the rooms sheet, so only stored rooms matter.
func (v *BulkImportValidator) checkEventAvailability(result *ValidationResult, stored Snapshot) {
	var halls []plannedRoom
	for _, p := range result.events {
		e := p.event
		if !e.Blocking() {
			continue
		}
		blocking, err := v.checker.Conflicts(e.ResourceID, e.Range(), stored.Events, 0)
		if err != nil {
			continue
		}
		if len(blocking) > 0 {
			result.addEventError(errors.RowError{
				RowNumber: p.row, Field: "disponibilidad", Data: e.ResourceID,
				Message: conflictMessage("El salón", blocking),
			})
		} else if prev, ok := v.overlapsEarlier(halls, e.ResourceID, e.Range()); ok {
			result.addEventError(errors.RowError{
				RowNumber: p.row, Field: "disponibilidad", Data: e.ResourceID,
				Message: fmt.Sprintf("Se solapa con el evento de la fila %d", prev),
			})
		} else {
			halls = append(halls, plannedRoom{room: e, row: p.row})
		}

		stay := models.RoomBlockRange(e)
		for _, letter := range p.letters {
			blocking, err := v.checker.Conflicts(letter, stay, stored.Rooms, 0)
			if err != nil {
				continue
			}
			if len(blocking) > 0 {
				result.addEventError(errors.RowError{
					RowNumber: p.row, Field: constants.ColRoom, Data: letter,
					Message: conflictMessage("La habitación "+letter, blocking),
				})
			}
		}
	}
}

// PlannedRooms returns the room reservations a valid batch would create,
// not counting rooms linked to events.
func (r *ValidationResult) PlannedRooms() []*models.Reservation {
	out := make([]*models.Reservation, 0, len(r.rooms))
	for _, p := range r.rooms {
		out = append(out, p.room)
	}
	return out
}

// PlannedLinks returns the number of rooms a valid batch would link to events.
func (r *ValidationResult) PlannedLinks() int {
	n := 0
	for _, p := range r.events {
		n += len(p.letters)
	}
	return n
}
