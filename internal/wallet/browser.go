package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

const requestAccountsJS = `(() => window.ethereum
	? window.ethereum.request({ method: 'eth_requestAccounts' })
	: null)()`

// BrowserProvider asks the injected wallet of an open browser tab for its
// accounts over the Chrome DevTools Protocol.
type BrowserProvider struct {
	cdpURL       string
	tabURLFilter string
	timeout      time.Duration
}

// NewBrowserProvider targets the browser listening at cdpURL. Only page
// targets whose URL contains tabURLFilter are considered.
func NewBrowserProvider(cdpURL, tabURLFilter string, timeout time.Duration) *BrowserProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserProvider{cdpURL: cdpURL, tabURLFilter: tabURLFilter, timeout: timeout}
}

// RequestAccounts returns ErrNoProvider when the browser is unreachable, no
// tab matches, or the tab has no window.ethereum.
func (p *BrowserProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.cdpURL == "" {
		return nil, ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, p.cdpURL)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx); err != nil {
		slog.Warn("wallet browser unreachable", "url", p.cdpURL, "error", err)
		return nil, ErrNoProvider
	}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("enumerate targets: %w", err)
	}

	tabID, ok := p.pickTab(targets)
	if !ok {
		slog.Info("no wallet tab found", "tab_url_filter", p.tabURLFilter)
		return nil, ErrNoProvider
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(tabID))
	defer tabCancel()

	var accounts []string
	err = chromedp.Run(tabCtx, chromedp.Evaluate(requestAccountsJS, &accounts,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}
	if accounts == nil {
		return nil, ErrNoProvider
	}
	return accounts, nil
}

func (p *BrowserProvider) pickTab(targets []*target.Info) (target.ID, bool) {
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if matchesTabURL(t.URL, p.tabURLFilter) {
			return t.TargetID, true
		}
	}
	return "", false
}

func matchesTabURL(url, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(url), strings.ToLower(filter))
}
