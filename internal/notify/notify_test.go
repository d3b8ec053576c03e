package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSendPostsMessage(t *testing.T) {
	ctx := context.Background()

	var receivedMethod string
	var receivedPath string
	var receivedBody string
	var receivedContentType string

	client := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			receivedMethod = r.Method
			receivedPath = r.URL.Path
			receivedContentType = r.Header.Get("Content-Type")
			rawBody, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			receivedBody = string(rawBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("ok")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if err := Send(ctx, client, "http://example.com/volvot", "Wallet connected successfully!"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if got, want := receivedMethod, http.MethodPost; got != want {
		t.Fatalf("method = %q; want %q", got, want)
	}
	if got, want := receivedPath, "/volvot"; got != want {
		t.Fatalf("path = %q; want %q", got, want)
	}
	if got, want := receivedContentType, "text/plain"; got != want {
		t.Fatalf("content-type = %q; want %q", got, want)
	}
	if got, want := receivedBody, "Wallet connected successfully!"; got != want {
		t.Fatalf("body = %q; want %q", got, want)
	}
}

func TestSendReturnsErrorForServerError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(strings.NewReader("server failure")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	err := Send(context.Background(), client, "http://example.com/volvot", "x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ntfy notification failed") {
		t.Fatalf("error = %q; want to contain %q", err, "ntfy notification failed")
	}
}

func TestSendDisallowsMissingEndpoint(t *testing.T) {
	if err := Send(context.Background(), http.DefaultClient, "", "x"); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestShowReplacesCurrentNotice(t *testing.T) {
	c := NewCenter(5*time.Second, "", nil)
	first := c.Info("Executing swap...")
	second := c.Success("Swapped!")

	got, ok := c.Active()
	if !ok {
		t.Fatal("Active() = false; want a notice")
	}
	if got.ID != second.ID {
		t.Fatalf("Active().ID = %q; want %q", got.ID, second.ID)
	}
	if c.Dismiss(first.ID) {
		t.Fatal("Dismiss(replaced) = true; want false")
	}
	if got.Icon != "✓" {
		t.Fatalf("Icon = %q; want %q", got.Icon, "✓")
	}
}

func TestNoticeExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCenter(5*time.Second, "", nil)
	c.now = func() time.Time { return now }

	c.Error("Invalid swap amount")
	if _, ok := c.Active(); !ok {
		t.Fatal("Active() = false before TTL")
	}
	now = now.Add(5 * time.Second)
	if _, ok := c.Active(); ok {
		t.Fatal("Active() = true after TTL")
	}
}

func TestDismissAndObservers(t *testing.T) {
	c := NewCenter(time.Minute, "", nil)
	var seen []string
	c.OnShow(func(n Notice) { seen = append(seen, n.Message) })

	n := c.Info("Wallet disconnected")
	if !c.Dismiss(n.ID) {
		t.Fatal("Dismiss() = false; want true")
	}
	if _, ok := c.Active(); ok {
		t.Fatal("Active() = true after dismiss")
	}
	if len(seen) != 1 || seen[0] != "Wallet disconnected" {
		t.Fatalf("observers saw %v", seen)
	}
}

func TestShowForwardsToEndpoint(t *testing.T) {
	got := make(chan string, 1)
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(r.Body)
		got <- string(body)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}, nil
	})}

	c := NewCenter(time.Minute, "http://ntfy.test/volvot", client)
	c.Error("Failed to connect wallet")

	select {
	case body := <-got:
		if want := "[error] Failed to connect wallet"; body != want {
			t.Fatalf("forwarded body = %q; want %q", body, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notice was not forwarded")
	}
}
