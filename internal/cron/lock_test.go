package cron

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (s *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, held := s.values[key]; held {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockExclusivity(t *testing.T) {
	t.Parallel()

	store := newFakeRedisStore()
	ctx := context.Background()

	first, err := NewRedisLock(store, "sp:lock:cron", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, err := NewRedisLock(store, "sp:lock:cron", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second instance acquired a held lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("reacquire after release = %v, %v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	t.Parallel()

	store := newFakeRedisStore()
	ctx := context.Background()

	holder, _ := NewRedisLock(store, "sp:lock:cron", time.Hour)
	bystander, _ := NewRedisLock(store, "sp:lock:cron", time.Hour)

	if ok, _ := holder.Acquire(ctx); !ok {
		t.Fatal("holder failed to acquire")
	}
	// a lock that never acquired must not delete the holder's key
	if err := bystander.Release(ctx); err != nil {
		t.Fatalf("bystander release: %v", err)
	}
	if _, held := store.values["sp:lock:cron"]; !held {
		t.Fatal("holder's lock was deleted by another instance")
	}
}
