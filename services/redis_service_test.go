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

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestReservationCache(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cache := NewReservationCache(rdb, time.Minute, nil)
	ctx := context.Background()

	f := repositories.ReservationFilter{ResourceType: constants.ResourceRoom, Page: 0, Limit: 10}
	var page ReservationPage
	if cache.Get(ctx, f, &page) {
		t.Fatal("Get() hit on empty cache")
	}

	cache.Set(ctx, f, ReservationPage{Items: []models.Reservation{{ID: 1, ResourceID: "A"}}, Total: 1})
	if !cache.Get(ctx, f, &page) || page.Total != 1 || page.Items[0].ResourceID != "A" {
		t.Fatalf("Get() after Set = %+v", page)
	}

	mr.Set("unrelated", "x")
	cache.Invalidate(ctx)
	if mr.Exists(f.Key()) {
		t.Error("Invalidate() left the list key")
	}
	if !mr.Exists("unrelated") {
		t.Error("Invalidate() removed an unrelated key")
	}
}

func TestReservationCacheDisabled(t *testing.T) {
	cache := NewReservationCache(nil, time.Minute, nil)
	var page ReservationPage
	if cache.Get(context.Background(), repositories.ReservationFilter{}, &page) {
		t.Error("disabled cache reported a hit")
	}
	cache.Invalidate(context.Background())
}

func TestRedisLocker(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLocker(rdb, time.Second)
	release, err := first.Lock(ctx, constants.ResourceRoom, []string{"g", "F", "G"})
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if !mr.Exists(LockKey(constants.ResourceRoom, "F")) || !mr.Exists(LockKey(constants.ResourceRoom, "G")) {
		t.Fatal("Lock() did not set both keys")
	}

	second := NewRedisLocker(rdb, time.Second)
	second.retries = 1
	second.wait = time.Millisecond
	if _, err := second.Lock(ctx, constants.ResourceRoom, []string{"H", "G"}); !stderrors.Is(err, errors.ErrResourceBusy) {
		t.Fatalf("second Lock() error = %v, want ErrResourceBusy", err)
	}
	if mr.Exists(LockKey(constants.ResourceRoom, "H")) {
		t.Error("failed Lock() kept a partial key")
	}

	release()
	if mr.Exists(LockKey(constants.ResourceRoom, "F")) {
		t.Error("release did not delete the keys")
	}
	release2, err := second.Lock(ctx, constants.ResourceRoom, []string{"G"})
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	release2()
}
