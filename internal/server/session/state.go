// Package session keeps per-login state in a signed and encrypted cookie
// and hands it to handlers through the request context.
package session

import (
	"context"
	"slices"
	"time"
)

// State is what the server remembers about a browser between requests.
type State struct {
	UserID   int64
	UserName string
	// LoginAt is set on login and not refreshed; the idle timeout counts
	// from it.
	LoginAt time.Time
	// Staged holds usernames queued for invitation while a page is being
	// composed, in insertion order without duplicates.
	Staged []string
}

// Authenticated reports whether the state belongs to a logged in user.
func (s *State) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// Expired reports whether more than idle has passed since login.
func (s *State) Expired(now time.Time, idle time.Duration) bool {
	return now.Sub(s.LoginAt) > idle
}

// Stage appends name unless it is already staged.
func (s *State) Stage(name string) bool {
	if slices.Contains(s.Staged, name) {
		return false
	}
	s.Staged = append(s.Staged, name)
	return true
}

// Unstage removes name and reports whether it was there.
func (s *State) Unstage(name string) bool {
	i := slices.Index(s.Staged, name)
	if i < 0 {
		return false
	}
	s.Staged = slices.Delete(s.Staged, i, i+1)
	return true
}

func (s *State) IsStaged(name string) bool {
	return slices.Contains(s.Staged, name)
}

func (s *State) ClearStaged() {
	s.Staged = nil
}

type ctxKey struct{}

// WithState stores st in ctx.
func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the state placed by WithState.
func FromContext(ctx context.Context) (*State, bool) {
	st, ok := ctx.Value(ctxKey{}).(*State)
	return st, ok && st != nil
}
