package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "kanbo:")
}

func TestRedisStoreGetPutDelete(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
	if err := store.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got, _ := mr.Get("kanbo:k"); got != "v1" {
		t.Fatalf("expected prefixed key in redis, got %q", got)
	}
	data, err := store.Get(ctx, "k")
	if err != nil || string(data) != "v1" {
		t.Fatalf("get = %q, %v", data, err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("kanbo:k") {
		t.Fatal("key still present after delete")
	}
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	_, store := newTestRedis(t)
	ctx := context.Background()
	repo := NewRepository(store, nil)

	in := sampleTasks()
	if err := repo.Save(ctx, "user-1", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := repo.Load(ctx, "user-1"); !reflect.DeepEqual(got, in) {
		t.Fatalf("unexpected tasks: %#v", got)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, store := newTestRedis(t)
	mr.Close()

	if _, err := store.Get(context.Background(), "k"); err == nil || errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}
