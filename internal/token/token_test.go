package token

import (
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/wishwell/api/internal/domain"
)

func TestNewSecret(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		secret, err := NewSecret()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(secret) != 22 {
			t.Fatalf("expected 22 characters, got %d (%q)", len(secret), secret)
		}
		if _, err := base64.RawURLEncoding.DecodeString(secret); err != nil {
			t.Fatalf("secret is not URL-safe base64: %v", err)
		}
		if _, dup := seen[secret]; dup {
			t.Fatalf("duplicate secret %q", secret)
		}
		seen[secret] = struct{}{}
	}
}

type stubSlugChecker struct {
	taken  map[string]bool
	allBad bool
	err    error
	calls  int
}

func (s *stubSlugChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if s.allBad {
		return true, nil
	}
	return s.taken[slug], nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9_]+)*$`)

func TestSlugger(t *testing.T) {
	ctx := context.Background()

	t.Run("folds the title", func(t *testing.T) {
		s := NewSlugger(&stubSlugChecker{})
		got, err := s.New(ctx, "Birthday List")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "birthday-list" {
			t.Fatalf("expected birthday-list, got %q", got)
		}
	})

	t.Run("appends a suffix on collision", func(t *testing.T) {
		s := NewSlugger(&stubSlugChecker{taken: map[string]bool{"birthday-list": true}})
		got, err := s.New(ctx, "Birthday List")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(got, "birthday-list-") {
			t.Fatalf("expected suffixed candidate, got %q", got)
		}
		if len(got) != len("birthday-list-")+6 {
			t.Fatalf("expected a 6 character suffix, got %q", got)
		}
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		checker := &stubSlugChecker{allBad: true}
		s := NewSlugger(checker)
		if _, err := s.New(ctx, "Birthday List"); !errors.Is(err, domain.ErrGenerationExhausted) {
			t.Fatalf("expected ErrGenerationExhausted, got %v", err)
		}
		if checker.calls != 10 {
			t.Fatalf("expected 10 attempts, got %d", checker.calls)
		}
	})

	t.Run("falls back for untranslatable titles", func(t *testing.T) {
		s := NewSlugger(&stubSlugChecker{})
		got, err := s.New(ctx, "!!!")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "wishlist" {
			t.Fatalf("expected fallback base, got %q", got)
		}
	})

	t.Run("truncates very long titles", func(t *testing.T) {
		s := NewSlugger(&stubSlugChecker{})
		got, err := s.New(ctx, strings.Repeat("very long title ", 20))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) > 48 {
			t.Fatalf("expected at most 48 characters, got %d (%q)", len(got), got)
		}
		if !slugPattern.MatchString(got) {
			t.Fatalf("slug %q is not URL-safe", got)
		}
	})

	t.Run("propagates checker failures", func(t *testing.T) {
		s := NewSlugger(&stubSlugChecker{err: errors.New("db down")})
		if _, err := s.New(ctx, "Birthday List"); err == nil {
			t.Fatal("expected error")
		}
	})
}
