package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// ReservationFilter narrows List. Zero values mean "any".
type ReservationFilter struct {
	ResourceType  string
	ResourceID    string
	Status        string
	AssignedTo    *uint
	LinkedEventID *uint
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// Key is the cache key for the filter.
func (f ReservationFilter) Key() string {
	var b strings.Builder
	b.WriteString(constants.CacheReservationsPrefix)
	b.WriteString(f.ResourceType)
	fmt.Fprintf(&b, ":r=%s:s=%s", strings.ToUpper(f.ResourceID), f.Status)
	if f.AssignedTo != nil {
		fmt.Fprintf(&b, ":a=%d", *f.AssignedTo)
	}
	if f.LinkedEventID != nil {
		fmt.Fprintf(&b, ":e=%d", *f.LinkedEventID)
	}
	if f.From != nil {
		fmt.Fprintf(&b, ":f=%d", f.From.Unix())
	}
	if f.To != nil {
		fmt.Fprintf(&b, ":t=%d", f.To.Unix())
	}
	fmt.Fprintf(&b, ":p=%d:l=%d", f.Page, f.Limit)
	return b.String()
}

// ReservationRepository stores reservations with gorm
type ReservationRepository struct {
	db *gorm.DB
	// advisoryLocks is set on postgres, where ActiveForResources with forUpdate
	// also takes a transaction advisory lock per resource.
	advisoryLocks bool
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db, advisoryLocks: db.Dialector.Name() == "postgres"}
}

func (r *ReservationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// WithTransaction runs fn inside one database transaction. Nested calls reuse
// the outer transaction.
func (r *ReservationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.getDB(ctx).First(&res, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ActiveForResources returns the non-cancelled reservations of the given resources.
// With forUpdate the rows are locked until the surrounding transaction ends, and
// on postgres so is each resource itself, which covers a free resource with no rows.
func (r *ReservationRepository) ActiveForResources(ctx context.Context, resourceType string, resourceIDs []string, forUpdate bool) ([]models.Reservation, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(resourceIDs))
	for i, id := range resourceIDs {
		ids[i] = strings.ToUpper(strings.TrimSpace(id))
	}

	db := r.getDB(ctx)
	if forUpdate {
		if err := r.lockResources(db, resourceType, ids); err != nil {
			return nil, err
		}
	}

	q := db.
		Where("resource_type = ? AND UPPER(resource_id) IN ? AND status <> ?", resourceType, ids, constants.StatusCancelled).
		Order("start_at ASC")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var out []models.Reservation
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AdvisoryKeys are the lock keys of resourceIDs, de-duplicated and sorted so
// writers always acquire them in the same order.
func AdvisoryKeys(resourceType string, resourceIDs []string) []string {
	seen := make(map[string]bool, len(resourceIDs))
	keys := make([]string, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		key := resourceType + ":" + strings.ToUpper(strings.TrimSpace(id))
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *ReservationRepository) lockResources(db *gorm.DB, resourceType string, ids []string) error {
	if !r.advisoryLocks {
		return nil
	}
	for _, key := range AdvisoryKeys(resourceType, ids) {
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
	}
	return nil
}

func (r *ReservationRepository) LinkedRooms(ctx context.Context, eventID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.getDB(ctx).
		Where("resource_type = ? AND linked_event_id = ?", constants.ResourceRoom, eventID).
		Order("resource_id ASC").
		Find(&out).Error
	return out, err
}

// List returns one page of reservations matching f and the total count.
func (r *ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error) {
	q := r.getDB(ctx).Model(&models.Reservation{})
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != "" {
		q = q.Where("UPPER(resource_id) = ?", strings.ToUpper(f.ResourceID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *f.AssignedTo)
	}
	if f.LinkedEventID != nil {
		q = q.Where("linked_event_id = ?", *f.LinkedEventID)
	}
	if f.From != nil {
		q = q.Where("end_at > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	var out []models.Reservation
	err := q.Order("start_at ASC, id ASC").Offset(page * limit).Limit(limit).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	return r.getDB(ctx).Create(res).Error
}

func (r *ReservationRepository) Save(ctx context.Context, res *models.Reservation) error {
	return r.getDB(ctx).Save(res).Error
}

func (r *ReservationRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&models.Reservation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrReservationNotFound
	}
	return nil
}

// DeleteLinkedRooms removes every room reservation linked to eventID.
func (r *ReservationRepository) DeleteLinkedRooms(ctx context.Context, eventID uint) (int64, error) {
	result := r.getDB(ctx).
		Where("resource_type = ? AND linked_event_id = ?", constants.ResourceRoom, eventID).
		Delete(&models.Reservation{})
	return result.RowsAffected, result.Error
}

// ClearLinks detaches the rooms linked to eventID without deleting them.
func (r *ReservationRepository) ClearLinks(ctx context.Context, eventID uint) (int64, error) {
	result := r.getDB(ctx).Model(&models.Reservation{}).
		Where("resource_type = ? AND linked_event_id = ?", constants.ResourceRoom, eventID).
		Update("linked_event_id", nil)
	return result.RowsAffected, result.Error
}

// ExpirePending cancels pending reservations that ended before endedBefore.
func (r *ReservationRepository) ExpirePending(ctx context.Context, endedBefore time.Time) (int64, error) {
	result := r.getDB(ctx).Model(&models.Reservation{}).
		Where("status = ? AND end_at < ?", constants.StatusPending, endedBefore).
		Update("status", constants.StatusCancelled)
	return result.RowsAffected, result.Error
}
