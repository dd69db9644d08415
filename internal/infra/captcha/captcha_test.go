package captcha

import (
	"context"
	"strings"
	"testing"
	"time"

	"newsportal/internal/infra/codestore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestIssuer(t *testing.T) (*Issuer, *codestore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := codestore.New(client)
	issuer := NewIssuer(store, Options{TTL: 300 * time.Second})
	return issuer, store, mr
}

func TestIssueStoresUppercaseText(t *testing.T) {
	issuer, store, _ := newTestIssuer(t)
	ctx := context.Background()

	id := "0b9a4cb8-56f5-4b52-9a0a-4f7f7f0c1d2e"
	png, text, err := issuer.Issue(ctx, id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(png) == 0 {
		t.Fatalf("expected non-empty image bytes")
	}
	if len(text) != 4 {
		t.Fatalf("expected 4-char challenge, got %q", text)
	}
	if text != strings.ToUpper(text) {
		t.Fatalf("expected uppercase challenge, got %q", text)
	}

	stored, err := store.Get(ctx, codestore.ImageKey(id))
	if err != nil {
		t.Fatalf("get stored text: %v", err)
	}
	if stored != text {
		t.Fatalf("stored text %q != issued text %q", stored, text)
	}
}

func TestIssueOverwritesSameID(t *testing.T) {
	issuer, store, _ := newTestIssuer(t)
	ctx := context.Background()

	id := "0b9a4cb8-56f5-4b52-9a0a-4f7f7f0c1d2e"
	if _, _, err := issuer.Issue(ctx, id); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	_, second, err := issuer.Issue(ctx, id)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	stored, err := store.Get(ctx, codestore.ImageKey(id))
	if err != nil {
		t.Fatalf("get stored text: %v", err)
	}
	if stored != second {
		t.Fatalf("expected latest issue to win, stored %q issued %q", stored, second)
	}
}

func TestIssueExpiresAfterTTL(t *testing.T) {
	issuer, store, mr := newTestIssuer(t)
	ctx := context.Background()

	id := "3d1c8c74-9d7e-49f1-8a53-6a22cbfbbcd1"
	if _, _, err := issuer.Issue(ctx, id); err != nil {
		t.Fatalf("issue: %v", err)
	}

	mr.FastForward(301 * time.Second)

	if _, err := store.Get(ctx, codestore.ImageKey(id)); err == nil {
		t.Fatalf("expected challenge expired after ttl")
	}
}
