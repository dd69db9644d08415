package codestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func TestStoreSetGetWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	key := ImageKey("f8a7f0ec-3a7b-4d16-9f3d-2b7f4f1a0c11")
	if err := store.SetWithTTL(ctx, key, "A3F9", 300*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "A3F9" {
		t.Fatalf("expected stored text A3F9, got %q", got)
	}

	mr.FastForward(301 * time.Second)

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after ttl, got %v", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	key := SMSKey("13912345678")
	if err := store.SetWithTTL(ctx, key, "111111", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetWithTTL(ctx, key, "222222", time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "222222" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}

func TestStorePipelineWritesAllEntries(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mobile := "13912345678"
	entries := []Entry{
		{Key: SMSFlagKey(mobile), Value: "1", TTL: 60 * time.Second},
		{Key: SMSKey(mobile), Value: "654321", TTL: 300 * time.Second},
	}
	if err := store.Pipeline(ctx, entries); err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	code, err := store.Get(ctx, SMSKey(mobile))
	if err != nil {
		t.Fatalf("get sms code: %v", err)
	}
	if code != "654321" {
		t.Fatalf("expected sms code persisted, got %q", code)
	}
	if _, err := store.Get(ctx, SMSFlagKey(mobile)); err != nil {
		t.Fatalf("get sms flag: %v", err)
	}

	// 限流标记先于验证码过期。
	mr.FastForward(61 * time.Second)
	if _, err := store.Get(ctx, SMSFlagKey(mobile)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected flag expired, got %v", err)
	}
	if _, err := store.Get(ctx, SMSKey(mobile)); err != nil {
		t.Fatalf("sms code should outlive flag: %v", err)
	}
}

func TestStoreAcquireFlag(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	key := SMSFlagKey("13912345678")

	ok, err := store.AcquireFlag(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatalf("expected first acquire to win")
	}

	ok, err = store.AcquireFlag(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatalf("expected second acquire to lose while flag alive")
	}

	mr.FastForward(61 * time.Second)

	ok, err = store.AcquireFlag(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("acquire after expire: %v", err)
	}
	if !ok {
		t.Fatalf("expected acquire to win after flag expired")
	}
}
