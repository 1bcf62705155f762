// Package token mints the capability secrets and public slugs that stand in
// for accounts: unguessable opaque strings checked by exact match only.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	goslug "github.com/gosimple/slug"

	"github.com/wishwell/api/internal/domain"
)

const (
	secretBytes     = 16
	suffixBytes     = 4
	maxSlugAttempts = 10
	maxSlugBase     = 48
)

// NewSecret returns a 128-bit random token, base64 URL-encoded without
// padding (22 characters).
func NewSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SlugChecker reports whether a candidate slug is already taken.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Slugger derives unique, human-readable slugs from wishlist titles.
type Slugger struct {
	checker SlugChecker
}

func NewSlugger(checker SlugChecker) *Slugger {
	return &Slugger{checker: checker}
}

// New folds the title to a URL-safe base and probes for uniqueness,
// appending a random suffix on collision. Fails with ErrGenerationExhausted
// after a bounded number of attempts.
func (s *Slugger) New(ctx context.Context, title string) (string, error) {
	base := goslug.Make(title)
	if len(base) > maxSlugBase {
		base = strings.Trim(base[:maxSlugBase], "-")
	}
	if base == "" {
		base = "wishlist"
	}

	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if attempt > 0 {
			suffix, err := randomSuffix()
			if err != nil {
				return "", err
			}
			candidate = base + "-" + suffix
		}
		taken, err := s.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrGenerationExhausted
}

func randomSuffix() (string, error) {
	b := make([]byte, suffixBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.ToLower(base64.RawURLEncoding.EncodeToString(b)[:6]), nil
}
