// Package market polls the DexScreener pair endpoint and publishes the
// resulting snapshot into the state store.
package market

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/dgnsrekt/volvot/internal/state"
)

// Fallback is installed when no snapshot has ever been fetched.
var Fallback = state.MarketSnapshot{
	PriceUSD:     state.FallbackPriceUSD,
	Change24h:    249,
	Volume24h:    5408.26,
	MarketCapUSD: 16554,
	LiquidityUSD: 12500.61,
	Fallback:     true,
}

// Fetcher returns a fresh market snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (state.MarketSnapshot, error)
}

// Poller republishes fetched snapshots into the store.
type Poller struct {
	fetcher Fetcher
	store   *state.Store
	timeout time.Duration
	now     func() time.Time
}

// NewPoller creates a poller. timeout bounds each fetch; zero means no
// bound beyond the caller's context.
func NewPoller(fetcher Fetcher, store *state.Store, timeout time.Duration) *Poller {
	return &Poller{fetcher: fetcher, store: store, timeout: timeout, now: time.Now}
}

// Refresh fetches once. Failures are never returned: without a snapshot the
// fallback is installed, otherwise the stale snapshot is kept.
func (p *Poller) Refresh(ctx context.Context) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	snap, err := p.fetcher.Fetch(ctx)
	if err == nil {
		if uerr := p.store.Update(func(st *state.State) error {
			s := snap
			st.Market = &s
			return nil
		}, state.TopicMarket, state.TopicPortfolio); uerr != nil {
			slog.Error("market snapshot update failed", "error", uerr)
			return
		}
		metrics.MarketPoll("fresh")
		slog.Debug("market snapshot refreshed", "price_usd", snap.PriceUSD, "change_24h", snap.Change24h)
		return
	}

	installed := false
	if uerr := p.store.Update(func(st *state.State) error {
		if st.Market != nil {
			return nil
		}
		fb := Fallback
		fb.FetchedAt = p.now().UTC()
		st.Market = &fb
		installed = true
		return nil
	}, state.TopicMarket, state.TopicPortfolio); uerr != nil {
		slog.Error("market fallback update failed", "error", uerr)
		return
	}

	if installed {
		metrics.MarketPoll("fallback")
		slog.Warn("market fetch failed, using fallback snapshot", "error", err)
		return
	}
	metrics.MarketPoll("stale")
	slog.Warn("market fetch failed, keeping previous snapshot", "error", err)
}
