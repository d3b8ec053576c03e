package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/google/uuid"
)

// Kind selects the colour and icon of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Icon returns the glyph shown next to a notice of this kind.
func (k Kind) Icon() string {
	switch k {
	case KindSuccess:
		return "✓"
	case KindError:
		return "✗"
	default:
		return "ℹ"
	}
}

// Notice is a transient user-facing message.
type Notice struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Icon      string    `json:"icon"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Center keeps the single visible notice. Showing a notice replaces the
// current one; a notice disappears after the TTL or when dismissed.
type Center struct {
	mu      sync.Mutex
	current *Notice
	ttl     time.Duration
	now     func() time.Time

	forwardURL string
	client     *http.Client
	observers  []func(Notice)
}

// NewCenter creates a notice center. When forwardURL is set every notice is
// also posted to that ntfy-style endpoint.
func NewCenter(ttl time.Duration, forwardURL string, client *http.Client) *Center {
	return &Center{ttl: ttl, now: time.Now, forwardURL: forwardURL, client: client}
}

// OnShow registers fn to be called with every new notice.
func (c *Center) OnShow(fn func(Notice)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Show raises a notice and returns it.
func (c *Center) Show(kind Kind, message string) Notice {
	now := c.now()
	n := Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Icon:      kind.Icon(),
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.current = &n
	observers := append([]func(Notice){}, c.observers...)
	c.mu.Unlock()

	metrics.Notice(string(kind))
	for _, fn := range observers {
		fn(n)
	}

	if c.forwardURL != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := Send(ctx, c.client, c.forwardURL, fmt.Sprintf("[%s] %s", kind, message)); err != nil {
				slog.Debug("notice forward failed", "endpoint", c.forwardURL, "error", err)
			}
		}()
	}
	return n
}

// Success, Error and Info are shorthands for Show.
func (c *Center) Success(message string) Notice { return c.Show(KindSuccess, message) }
func (c *Center) Error(message string) Notice   { return c.Show(KindError, message) }
func (c *Center) Info(message string) Notice    { return c.Show(KindInfo, message) }

// Active returns the visible notice, if any.
func (c *Center) Active() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notice{}, false
	}
	if !c.now().Before(c.current.ExpiresAt) {
		c.current = nil
		return Notice{}, false
	}
	return *c.current, true
}

// Dismiss hides the notice with the given id. It reports whether that
// notice was the visible one.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != id {
		return false
	}
	c.current = nil
	return true
}

// Send posts a plain-text message to an ntfy-style endpoint.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
