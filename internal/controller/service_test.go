package controller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/catalog"
	"github.com/dgnsrekt/volvot/internal/chat"
	"github.com/dgnsrekt/volvot/internal/relay"
	"github.com/dgnsrekt/volvot/internal/state"
)

type fetcherFunc func(context.Context) (state.MarketSnapshot, error)

func (f fetcherFunc) Fetch(ctx context.Context) (state.MarketSnapshot, error) { return f(ctx) }

func failingFetcher() fetcherFunc {
	return func(context.Context) (state.MarketSnapshot, error) {
		return state.MarketSnapshot{}, errors.New("offline")
	}
}

func newService(t *testing.T, f fetcherFunc) *Service {
	t.Helper()
	s, err := NewService(Options{Fetcher: f, Seed: 7})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return s
}

func TestNewServiceRequiresFetcher(t *testing.T) {
	if _, err := NewService(Options{}); err == nil {
		t.Fatal("NewService() = nil error; want error")
	}
}

func TestRequireNonEmpty(t *testing.T) {
	s := &Service{}
	if err := s.requireNonEmpty("volvot", "project id"); err != nil {
		t.Fatalf("requireNonEmpty() = %v; want nil", err)
	}

	err := s.requireNonEmpty("   ", "project id")
	var got *apperr.CodedError
	if !errors.As(err, &got) {
		t.Fatalf("requireNonEmpty() = %T; want *apperr.CodedError", err)
	}
	if got.Code != apperr.CodeValidation {
		t.Fatalf("requireNonEmpty() code = %q; want %q", got.Code, apperr.CodeValidation)
	}
	if got.Message != "project id is required" {
		t.Fatalf("requireNonEmpty() message = %q; want %q", got.Message, "project id is required")
	}
}

func TestMarketUnavailableBeforeFirstPoll(t *testing.T) {
	s := newService(t, failingFetcher())
	if _, err := s.Market(context.Background()); !apperr.Is(err, apperr.CodeMarketUnavailable) {
		t.Fatalf("Market() error = %v; want MARKET_UNAVAILABLE", err)
	}

	view, err := s.RefreshMarket(context.Background())
	if err != nil {
		t.Fatalf("RefreshMarket() error = %v", err)
	}
	if !view.Snapshot.Fallback {
		t.Fatal("RefreshMarket() did not install the fallback snapshot")
	}
}

func TestCatalogLoadedOnceFromFirstPoll(t *testing.T) {
	price, marketCap := 0.00002, 20000.0
	s := newService(t, func(context.Context) (state.MarketSnapshot, error) {
		return state.MarketSnapshot{PriceUSD: price, PriceNative: 0.000000004, MarketCapUSD: marketCap, Volume24h: 6000, LiquidityUSD: 13000}, nil
	})
	ctx := context.Background()
	s.PollMarket(ctx)

	home, ok := catalog.Find(s.store.Get().Catalog, catalog.HomeID)
	if !ok {
		t.Fatal("home entry missing after first poll")
	}
	if got, want := home.Price, "0.00002"; got != want {
		t.Fatalf("home price = %q; want %q", got, want)
	}
	if got, want := home.MarketCap, 20000.0; got != want {
		t.Fatalf("home market cap = %v; want %v", got, want)
	}

	price, marketCap = 0.00003, 30000
	s.PollMarket(ctx)
	if got := s.store.Get().Market.PriceUSD; got != 0.00003 {
		t.Fatalf("market price after second poll = %v; want 0.00003", got)
	}

	entries, err := s.Catalog(ctx, "all", "")
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	again, _ := catalog.Find(entries, catalog.HomeID)
	if again.Price != home.Price || again.MarketCap != home.MarketCap {
		t.Fatalf("home entry changed after later poll: %+v; want %+v", again, home)
	}
}

func TestCatalogWithoutPollUsesFixtureFigures(t *testing.T) {
	s := newService(t, failingFetcher())
	fixture, err := catalog.Load(nil)
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	want, _ := catalog.Find(fixture, catalog.HomeID)

	entries, err := s.Catalog(context.Background(), "all", "")
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	got, ok := catalog.Find(entries, catalog.HomeID)
	if !ok || got.Price != want.Price {
		t.Fatalf("home entry = %+v; want fixture price %q", got, want.Price)
	}

	s.PollMarket(context.Background())
	after, _ := catalog.Find(s.store.Get().Catalog, catalog.HomeID)
	if after.Price != want.Price {
		t.Fatalf("home price after poll = %q; want fixture %q", after.Price, want.Price)
	}
}

func TestCatalogRejectsUnknownCategory(t *testing.T) {
	s := newService(t, failingFetcher())
	if _, err := s.Catalog(context.Background(), "memes", ""); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("Catalog() error = %v; want VALIDATION", err)
	}
}

func TestTradeProject(t *testing.T) {
	s := newService(t, failingFetcher())

	if _, err := s.TradeProject(context.Background(), "nope"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("TradeProject(nope) error = %v; want NOT_FOUND", err)
	}

	action, err := s.TradeProject(context.Background(), "aave-base")
	if err != nil {
		t.Fatalf("TradeProject() error = %v", err)
	}
	n, ok := s.notices.Active()
	if !ok || n.Message != action.Message {
		t.Fatalf("notice = %+v, %v; want message %q", n, ok, action.Message)
	}
}

func TestSwapFlowThroughService(t *testing.T) {
	s := newService(t, failingFetcher())
	ctx := context.Background()
	s.PollMarket(ctx)

	if _, err := s.ConnectWallet(ctx); err != nil {
		t.Fatalf("ConnectWallet() error = %v", err)
	}
	q, err := s.Quote(ctx, 0.5)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	rcpt, err := s.Swap(ctx, 0.5)
	if err != nil {
		t.Fatalf("Swap() error = %v", err)
	}
	if rcpt.ToAmount != q.ToAmount {
		t.Fatalf("Swap() received %v; quote was %v", rcpt.ToAmount, q.ToAmount)
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txs) != 1 || txs[0].Kind != state.TxSwap {
		t.Fatalf("Transactions() = %+v; want one swap", txs)
	}
}

func TestChatSectionResolution(t *testing.T) {
	s := newService(t, failingFetcher())

	layout := chat.Layout{chat.SectionTrading: 1400, chat.SectionStaking: 2200}
	reply, err := s.SendChat(context.Background(), "how do I trade?", "", 1000, layout)
	if err != nil {
		t.Fatalf("SendChat() error = %v", err)
	}
	if reply.Section != chat.SectionTrading {
		t.Fatalf("SendChat() section = %q; want trading", reply.Section)
	}

	reply, err = s.SendChat(context.Background(), "hello", "bogus", 0, nil)
	if err != nil {
		t.Fatalf("SendChat() error = %v", err)
	}
	if reply.Section != chat.SectionHero {
		t.Fatalf("SendChat() section = %q; want hero", reply.Section)
	}

	if _, err := s.ChatContext(context.Background(), "bogus"); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("ChatContext() error = %v; want VALIDATION", err)
	}
}

func TestDismissUnknownNotice(t *testing.T) {
	s := newService(t, failingFetcher())
	if err := s.DismissNotice(context.Background(), "missing"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("DismissNotice() error = %v; want NOT_FOUND", err)
	}
}

func TestNoticesArePublished(t *testing.T) {
	s := newService(t, failingFetcher())
	_, ch := s.Broker().Subscribe()

	s.notices.Info("hello")

	deadline := time.After(time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Feed == relay.FeedNotice {
				if !strings.Contains(evt.Payload, "hello") {
					t.Fatalf("notice payload = %s", evt.Payload)
				}
				return
			}
		case <-deadline:
			t.Fatal("no notice event published")
		}
	}
}

func TestStreamSnapshotIncludesFeeds(t *testing.T) {
	s := newService(t, failingFetcher())
	s.PollMarket(context.Background())

	var regions, feeds int
	for _, evt := range s.StreamSnapshot() {
		switch evt.Feed {
		case relay.FeedRegion:
			regions++
		case relay.FeedSocial:
			feeds++
		}
	}
	if regions == 0 {
		t.Fatal("snapshot has no region events")
	}
	if feeds != 1 {
		t.Fatalf("snapshot feed events = %d; want 1", feeds)
	}
}
