// Package slugger derives URL-safe post identifiers from titles and assigns
// them uniquely against the durable store. The uniqueness check here is a
// best-effort pre-check: the store's unique slug index remains the source of
// truth, and a racing insert still fails with a duplicate-identity error.
package slugger

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Strategy selects how collisions found by the pre-check are resolved.
type Strategy string

const (
	// StrategyCounter appends -1, -2, ... and re-checks each probe.
	// Deterministic; the default everywhere.
	StrategyCounter Strategy = "counter"

	// StrategyTimestamp appends the last five digits of the millisecond
	// epoch once, without re-checking. Weaker; kept as a legacy
	// compatibility mode for call sites that skip re-verification.
	StrategyTimestamp Strategy = "timestamp"
)

// ExistsFunc reports whether a slug is already taken in the backing store.
// Errors (store unavailable etc.) are propagated, never swallowed.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

var (
	nonWord     = regexp.MustCompile(`[^\w-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// DeriveBaseSlug converts a title into its base slug: lowercase, whitespace
// runs collapsed into single hyphens, non-word characters stripped,
// consecutive hyphens collapsed, leading/trailing hyphens trimmed.
// A title without any alphanumeric character yields ""; callers must apply a
// fallback (see Assigner.Assign).
func DeriveBaseSlug(title string) string {
	s := strings.ToLower(title)
	s = whitespace.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Assigner computes unique slugs against an existence check.
type Assigner struct {
	strategy Strategy

	// now is injectable for deterministic tests of the timestamp strategy
	// and the empty-title fallback.
	now func() time.Time
}

func NewAssigner(strategy Strategy) *Assigner {
	if strategy == "" {
		strategy = StrategyCounter
	}
	return &Assigner{strategy: strategy, now: time.Now}
}

// NewAssignerWithClock is NewAssigner with an injected clock. Tests only.
func NewAssignerWithClock(strategy Strategy, now func() time.Time) *Assigner {
	a := NewAssigner(strategy)
	a.now = now
	return a
}

// AssignFromTitle derives the base slug from title and resolves it to a
// unique slug. An empty base slug (title with no alphanumerics) falls back to
// a generated "post-<ms epoch>" identifier before probing.
func (a *Assigner) AssignFromTitle(ctx context.Context, title string, exists ExistsFunc) (string, error) {
	base := DeriveBaseSlug(title)
	if base == "" {
		base = fmt.Sprintf("post-%d", a.now().UnixMilli())
	}
	return a.Assign(ctx, base, exists)
}

// Assign returns baseSlug unchanged when it is free, otherwise a variant per
// the configured strategy. With the counter strategy the returned slug did
// not exist at the instant of its check.
func (a *Assigner) Assign(ctx context.Context, baseSlug string, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, baseSlug)
	if err != nil {
		return "", err
	}
	if !taken {
		return baseSlug, nil
	}

	switch a.strategy {
	case StrategyTimestamp:
		// One-shot suffix, no re-check.
		ms := a.now().UnixMilli()
		return fmt.Sprintf("%s-%d", baseSlug, ms%100000), nil
	default:
		for i := 1; ; i++ {
			candidate := fmt.Sprintf("%s-%d", baseSlug, i)
			taken, err := exists(ctx, candidate)
			if err != nil {
				return "", err
			}
			if !taken {
				return candidate, nil
			}
		}
	}
}
