package voice

import (
	"errors"
	"testing"
	"time"
)

func TestLinkSignerRoundTrip(t *testing.T) {
	s, err := NewLinkSigner("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewLinkSigner: %v", err)
	}
	tok, err := s.Sign("Hello there")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := s.Verify("Hello there", tok); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := s.Verify("Something else entirely", tok); !errors.Is(err, ErrBadLink) {
		t.Fatalf("Verify(other text): want=ErrBadLink got=%v", err)
	}
	if err := s.Verify("Hello there", ""); !errors.Is(err, ErrBadLink) {
		t.Fatalf("Verify(empty): want=ErrBadLink got=%v", err)
	}
}

func TestLinkSignerExpiry(t *testing.T) {
	s, _ := NewLinkSigner("secret", time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	tok, _ := s.Sign("hi")
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := s.Verify("hi", tok); !errors.Is(err, ErrBadLink) {
		t.Fatalf("Verify(expired): want=ErrBadLink got=%v", err)
	}
}

func TestLinkSignerRejectsOtherKey(t *testing.T) {
	a, _ := NewLinkSigner("secret-a", time.Minute)
	b, _ := NewLinkSigner("secret-b", time.Minute)
	tok, _ := a.Sign("hi")
	if err := b.Verify("hi", tok); !errors.Is(err, ErrBadLink) {
		t.Fatalf("Verify(other key): want=ErrBadLink got=%v", err)
	}
	if _, err := NewLinkSigner(" ", time.Minute); err == nil {
		t.Fatalf("NewLinkSigner: empty secret should fail")
	}
}
