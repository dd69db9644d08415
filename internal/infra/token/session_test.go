package token

import (
	"errors"
	"testing"
	"time"
)

func TestSessionIssueAndParse(t *testing.T) {
	mgr := NewSessionManager("test-secret")

	raw, expiresAt, err := mgr.Issue(42, "zhangsan", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	sess, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sess.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", sess.UserID)
	}
	if sess.Username != "zhangsan" {
		t.Fatalf("expected username zhangsan, got %q", sess.Username)
	}
}

func TestSessionParseRejectsWrongSecret(t *testing.T) {
	raw, _, err := NewSessionManager("secret-a").Issue(1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewSessionManager("secret-b").Parse(raw)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionParseRejectsGarbage(t *testing.T) {
	mgr := NewSessionManager("test-secret")
	if _, err := mgr.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
