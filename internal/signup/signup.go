// Package signup handles the early-access mailing list form.
package signup

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/journal"
	"github.com/dgnsrekt/volvot/internal/notify"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailRE.MatchString(email)
}

// Result is the outcome of a join request.
type Result struct {
	Email   string `json:"email"`
	Already bool   `json:"already"`
}

// List collects early-access signups for the lifetime of the process.
type List struct {
	notices *notify.Center
	journal journal.Recorder
	delay   time.Duration

	mu     sync.Mutex
	emails map[string]struct{}
}

// NewList creates a list. delay simulates the remote call; rec may be nil.
func NewList(notices *notify.Center, rec journal.Recorder, delay time.Duration) *List {
	return &List{notices: notices, journal: rec, delay: delay, emails: make(map[string]struct{})}
}

// Join validates email and, after the simulated call, adds it to the list.
func (l *List) Join(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || !ValidEmail(email) {
		l.notices.Error("Please enter a valid email address")
		return Result{}, apperr.Validation("Please enter a valid email address")
	}

	if l.delay > 0 {
		timer := time.NewTimer(l.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	key := strings.ToLower(email)
	l.mu.Lock()
	_, already := l.emails[key]
	l.emails[key] = struct{}{}
	l.mu.Unlock()

	if !already && l.journal != nil {
		l.journal.Record("signup", "", map[string]string{"email": email})
	}
	slog.Info("early access signup", "already", already)
	l.notices.Success("Successfully joined the early access list!")
	return Result{Email: email, Already: already}, nil
}

// Count returns the number of distinct signups.
func (l *List) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.emails)
}
