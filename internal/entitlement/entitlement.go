// Package entitlement exposes the subscription/tier collaborator consumed by
// the search pipeline. Only the contract matters here: whether the caller is
// delayed, the delay cutoff, and the admin flag.
package entitlement

import (
	"context"
	"time"
)

// Tier names
const (
	TierFree    = "free"
	TierPremium = "premium"
	TierAdmin   = "admin"
)

// DefaultDelayWindow is how far behind live data a delayed tier sees
const DefaultDelayWindow = 48 * time.Hour

// Entitlement is the caller's resolved subscription state
type Entitlement struct {
	Tier        string
	IsAdmin     bool
	IsDelayed   bool
	DelayCutoff time.Time // listings first seen after this are hidden when IsDelayed
}

// Service resolves a caller token to an entitlement
type Service interface {
	Entitlement(ctx context.Context, token string) (Entitlement, error)
}

// Static is a Service with fixed tier assignments, used as the default
// implementation and in tests. Unknown tokens resolve to the free tier.
type Static struct {
	Tokens      map[string]string // token -> tier
	DelayWindow time.Duration
	Now         func() time.Time
}

// NewStatic creates a Static service with the default delay window
func NewStatic(tokens map[string]string) *Static {
	return &Static{Tokens: tokens, DelayWindow: DefaultDelayWindow, Now: time.Now}
}

// Entitlement resolves a token. Free-tier callers are delayed.
func (s *Static) Entitlement(ctx context.Context, token string) (Entitlement, error) {
	tier := TierFree
	if t, ok := s.Tokens[token]; ok {
		tier = t
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	window := s.DelayWindow
	if window == 0 {
		window = DefaultDelayWindow
	}

	ent := Entitlement{Tier: tier}
	switch tier {
	case TierAdmin:
		ent.IsAdmin = true
	case TierPremium:
	default:
		ent.IsDelayed = true
		ent.DelayCutoff = now().Add(-window)
	}
	return ent, nil
}
