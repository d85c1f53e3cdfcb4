package services

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"
	"reservas/repositories"
)

var errInjected = stderrors.New("injected failure")

// memStore is an in-memory ReservationStore, RateStore and ImportLogStore.
// Transactions snapshot the rows and restore them when fn fails.
type memStore struct {
	nextID     uint
	rows       map[uint]models.Reservation
	rates      map[string]models.ResourceRate
	logs       []models.ImportLog
	failCreate int // Create fails on this call number when > 0
	creates    int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uint]models.Reservation), rates: make(map[string]models.ResourceRate)}
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[uint]models.Reservation, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	nextID, logs := m.nextID, len(m.logs)
	if err := fn(ctx); err != nil {
		m.rows, m.nextID, m.logs = snapshot, nextID, m.logs[:logs]
		return err
	}
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, errors.ErrReservationNotFound
	}
	return &r, nil
}

func (m *memStore) ActiveForResources(ctx context.Context, resourceType string, ids []string, forUpdate bool) ([]models.Reservation, error) {
	want := make(map[string]bool)
	for _, id := range ids {
		want[strings.ToUpper(id)] = true
	}
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.ResourceType == resourceType && want[strings.ToUpper(r.ResourceID)] && r.Status != constants.StatusCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) LinkedRooms(ctx context.Context, eventID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.IsRoom() && r.LinkedEventID != nil && *r.LinkedEventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) List(ctx context.Context, f repositories.ReservationFilter) ([]models.Reservation, int64, error) {
	var out []models.Reservation
	for _, r := range m.sorted() {
		if f.ResourceType != "" && r.ResourceType != f.ResourceType {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.ResourceID != "" && !strings.EqualFold(r.ResourceID, f.ResourceID) {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) Create(ctx context.Context, r *models.Reservation) error {
	m.creates++
	if m.failCreate > 0 && m.creates == m.failCreate {
		return errInjected
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	r.SyncGuestCount()
	m.rows[r.ID] = *r
	return nil
}

func (m *memStore) Save(ctx context.Context, r *models.Reservation) error {
	if _, ok := m.rows[r.ID]; !ok {
		return errors.ErrReservationNotFound
	}
	r.SyncGuestCount()
	m.rows[r.ID] = *r
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return errors.ErrReservationNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) DeleteLinkedRooms(ctx context.Context, eventID uint) (int64, error) {
	rooms, _ := m.LinkedRooms(ctx, eventID)
	for _, r := range rooms {
		delete(m.rows, r.ID)
	}
	return int64(len(rooms)), nil
}

func (m *memStore) ClearLinks(ctx context.Context, eventID uint) (int64, error) {
	rooms, _ := m.LinkedRooms(ctx, eventID)
	for _, r := range rooms {
		r.LinkedEventID = nil
		m.rows[r.ID] = r
	}
	return int64(len(rooms)), nil
}

func (m *memStore) ExpirePending(ctx context.Context, endedBefore time.Time) (int64, error) {
	var n int64
	for id, r := range m.rows {
		if r.Status == constants.StatusPending && r.EndAt.Before(endedBefore) {
			r.Status = constants.StatusCancelled
			m.rows[id] = r
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindRate(ctx context.Context, resourceType, resourceID string) (*models.ResourceRate, error) {
	rate, ok := m.rates[resourceType+":"+strings.ToUpper(resourceID)]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (m *memStore) ListRates(ctx context.Context) ([]models.ResourceRate, error) {
	var out []models.ResourceRate
	for _, r := range m.rates {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpsertRate(ctx context.Context, rate *models.ResourceRate) error {
	rate.ResourceID = strings.ToUpper(rate.ResourceID)
	m.rates[rate.ResourceType+":"+rate.ResourceID] = *rate
	return nil
}

func (m *memStore) CreateImportLog(ctx context.Context, log *models.ImportLog) error {
	log.ID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memStore) ListImportLogs(ctx context.Context, page, limit int) ([]models.ImportLog, int64, error) {
	return m.logs, int64(len(m.logs)), nil
}

func (m *memStore) sorted() []models.Reservation {
	out := make([]models.Reservation, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) count(resourceType string) int {
	n := 0
	for _, r := range m.rows {
		if r.ResourceType == resourceType {
			n++
		}
	}
	return n
}

// seed stores r as is and returns its id
func (m *memStore) seed(r models.Reservation) uint {
	m.nextID++
	r.ID = m.nextID
	r.SyncGuestCount()
	m.rows[r.ID] = r
	return r.ID
}
