package controller

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/catalog"
	"github.com/dgnsrekt/volvot/internal/chat"
	"github.com/dgnsrekt/volvot/internal/feed"
	"github.com/dgnsrekt/volvot/internal/journal"
	"github.com/dgnsrekt/volvot/internal/market"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/portfolio"
	"github.com/dgnsrekt/volvot/internal/relay"
	"github.com/dgnsrekt/volvot/internal/render"
	"github.com/dgnsrekt/volvot/internal/signup"
	"github.com/dgnsrekt/volvot/internal/staking"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/swap"
	"github.com/dgnsrekt/volvot/internal/textfmt"
	"github.com/dgnsrekt/volvot/internal/wallet"
)

// Options configures a Service. Zero values are usable: no provider means
// the demo wallet, no journal means nothing is recorded.
type Options struct {
	Fetcher      market.Fetcher
	FetchTimeout time.Duration
	Provider     wallet.Provider
	Journal      journal.Recorder
	Notices      *notify.Center
	TxDelay      time.Duration
	SignupDelay  time.Duration
	Seed         uint64
}

// Service wires the site components around one state store.
type Service struct {
	store    *state.Store
	broker   *relay.Broker
	notices  *notify.Center
	poller   *market.Poller
	wallet   *wallet.Simulator
	swap     *swap.Calculator
	staking  *staking.Engine
	chat     *chat.Widget
	feed     *feed.Feed
	signup   *signup.List
	renderer *render.Renderer

	catalogOnce sync.Once
}

// NewService builds every component and connects their change
// notifications to the relay broker.
func NewService(opts Options) (*Service, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("controller: market fetcher is required")
	}
	notices := opts.Notices
	if notices == nil {
		notices = notify.NewCenter(5*time.Second, "", nil)
	}
	responder, err := chat.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	if _, err := catalog.Load(nil); err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}

	store := state.NewStore()
	broker := relay.NewBroker()
	s := &Service{
		store:    store,
		broker:   broker,
		notices:  notices,
		poller:   market.NewPoller(opts.Fetcher, store, opts.FetchTimeout),
		wallet:   wallet.NewSimulator(store, opts.Provider, notices, opts.Seed),
		swap:     swap.NewCalculator(store, notices, opts.Journal, opts.TxDelay),
		staking:  staking.NewEngine(store, notices, opts.Journal, opts.TxDelay),
		chat:     chat.NewWidget(responder, store),
		feed:     feed.New(store, opts.Seed+1),
		signup:   signup.NewList(notices, opts.Journal, opts.SignupDelay),
		renderer: render.NewRenderer(store, broker),
	}

	notices.OnShow(func(n notify.Notice) { broker.PublishJSON(relay.FeedNotice, n) })
	s.feed.OnChange(func(snap feed.Snapshot) { broker.PublishJSON(relay.FeedSocial, snap) })

	return s, nil
}

// loadCatalog populates the catalog the first time it is needed. The home
// entry takes its figures from the market snapshot present at that moment;
// later polls leave the catalog untouched.
func (s *Service) loadCatalog() {
	s.catalogOnce.Do(func() {
		var q *catalog.Quote
		if m := s.store.Get().Market; m != nil {
			q = quoteFrom(*m)
		}
		entries, err := catalog.Load(q)
		if err != nil {
			slog.Error("catalog load failed", "error", err)
			return
		}
		if err := s.store.Update(func(st *state.State) error {
			st.Catalog = entries
			return nil
		}, state.TopicCatalog); err != nil {
			slog.Error("catalog update failed", "error", err)
		}
	})
}

func quoteFrom(m state.MarketSnapshot) *catalog.Quote {
	return &catalog.Quote{
		Price:     strconv.FormatFloat(m.PriceUSD, 'f', -1, 64),
		MarketCap: m.MarketCapUSD,
		Volume24h: m.Volume24h,
		Liquidity: m.LiquidityUSD,
	}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(fieldName + " is required")
	}
	return nil
}

// Broker exposes the relay for the streaming endpoints.
func (s *Service) Broker() *relay.Broker { return s.broker }

// StreamSnapshot returns the events a new stream client needs to render
// the current page: every region, the live feeds and the active notice.
func (s *Service) StreamSnapshot() []relay.Event {
	events := s.renderer.Snapshot()
	if evt, ok := jsonEvent(relay.FeedSocial, s.feed.Snapshot()); ok {
		events = append(events, evt)
	}
	if n, ok := s.notices.Active(); ok {
		if evt, ok := jsonEvent(relay.FeedNotice, n); ok {
			events = append(events, evt)
		}
	}
	return events
}

// --- market ---

// MarketView is the current snapshot with its display text.
type MarketView struct {
	Snapshot state.MarketSnapshot `json:"snapshot"`
	Regions  []render.Region      `json:"regions"`
}

func (s *Service) Market(ctx context.Context) (MarketView, error) {
	st := s.store.Get()
	if st.Market == nil {
		return MarketView{}, apperr.New(apperr.CodeMarketUnavailable, "market data has not been loaded yet", nil)
	}
	return MarketView{Snapshot: *st.Market, Regions: render.Derive(st, state.TopicMarket)}, nil
}

// RefreshMarket polls once and returns the resulting view. Fetch failures
// are absorbed by the poller.
func (s *Service) RefreshMarket(ctx context.Context) (MarketView, error) {
	s.poller.Refresh(ctx)
	s.loadCatalog()
	return s.Market(ctx)
}

// --- wallet ---

func (s *Service) Wallet(ctx context.Context) (wallet.Status, error) {
	return s.wallet.Status(), nil
}

func (s *Service) ConnectWallet(ctx context.Context) (wallet.Status, error) {
	if err := s.wallet.Connect(ctx); err != nil {
		return wallet.Status{}, err
	}
	return s.wallet.Status(), nil
}

func (s *Service) DisconnectWallet(ctx context.Context) (wallet.Status, error) {
	if err := s.wallet.Disconnect(); err != nil {
		return wallet.Status{}, err
	}
	return s.wallet.Status(), nil
}

// --- trading ---

// SwapQuote is the preview shown while typing a swap amount.
type SwapQuote struct {
	FromAmount float64 `json:"from_amount"`
	ToAmount   float64 `json:"to_amount"`
	Rate       float64 `json:"rate"`
	ToText     string  `json:"to_text"`
	RateText   string  `json:"rate_text"`
}

func requireFinite(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperr.InvalidAmount(fmt.Sprintf("amount %v is not a finite number", amount))
	}
	return nil
}

func (s *Service) Quote(ctx context.Context, fromAmount float64) (SwapQuote, error) {
	if err := requireFinite(fromAmount); err != nil {
		return SwapQuote{}, err
	}
	to, err := s.swap.Quote(fromAmount)
	if err != nil {
		return SwapQuote{}, err
	}
	rate := swap.Rate(s.store.Get())
	return SwapQuote{
		FromAmount: fromAmount,
		ToAmount:   to,
		Rate:       rate,
		ToText:     textfmt.Fixed(to, 2),
		RateText:   "1 WETH = " + textfmt.Compact(rate) + " VOLVOT",
	}, nil
}

func (s *Service) Swap(ctx context.Context, fromAmount float64) (swap.Receipt, error) {
	if err := requireFinite(fromAmount); err != nil {
		return swap.Receipt{}, err
	}
	return s.swap.Execute(ctx, fromAmount)
}

func (s *Service) Stake(ctx context.Context, amount float64) (state.Transaction, error) {
	if err := requireFinite(amount); err != nil {
		return state.Transaction{}, err
	}
	return s.staking.Stake(ctx, amount)
}

func (s *Service) Unstake(ctx context.Context) (state.Transaction, error) {
	return s.staking.Unstake(ctx)
}

func (s *Service) StakingPosition(ctx context.Context) (staking.Position, error) {
	return s.staking.Position(), nil
}

// StakeEstimate is the stake calculator result.
type StakeEstimate struct {
	Amount float64 `json:"amount"`
	Daily  float64 `json:"daily"`
	Text   string  `json:"text"`
}

func (s *Service) EstimateStake(ctx context.Context, amount float64) (StakeEstimate, error) {
	if err := requireFinite(amount); err != nil {
		return StakeEstimate{}, err
	}
	if amount < 0 {
		return StakeEstimate{}, apperr.InvalidAmount("amount must not be negative")
	}
	daily := staking.DailyEarnings(amount)
	return StakeEstimate{Amount: amount, Daily: daily, Text: textfmt.Fixed(daily, 4) + " VOLVOT"}, nil
}

// PortfolioView is the valuation with its display text.
type PortfolioView struct {
	portfolio.Summary
	ValueText    string `json:"value_text"`
	ChangeText   string `json:"change_text"`
	EarningsText string `json:"earnings_text"`
}

func (s *Service) Portfolio(ctx context.Context) (PortfolioView, error) {
	sum := portfolio.Value(s.store.Get())
	return PortfolioView{
		Summary:      sum,
		ValueText:    sum.ValueText(),
		ChangeText:   sum.ChangeText(),
		EarningsText: sum.EarningsText(),
	}, nil
}

func (s *Service) Transactions(ctx context.Context) ([]state.Transaction, error) {
	txs := s.store.Get().Transactions
	if txs == nil {
		txs = []state.Transaction{}
	}
	return txs, nil
}

// --- catalog ---

func (s *Service) Catalog(ctx context.Context, filter, term string) ([]catalog.Entry, error) {
	f := catalog.Category(strings.ToLower(strings.TrimSpace(filter)))
	switch f {
	case "", catalog.CategoryAll, catalog.CategoryDefi, catalog.CategoryInfrastructure:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown category %q", filter))
	}
	s.loadCatalog()
	return catalog.Search(catalog.List(s.store.Get().Catalog, f), term), nil
}

func (s *Service) CatalogMarkup(ctx context.Context, filter, term string) (string, error) {
	entries, err := s.Catalog(ctx, filter, term)
	if err != nil {
		return "", err
	}
	return catalog.RenderCards(entries)
}

func (s *Service) TradeProject(ctx context.Context, id string) (catalog.TradeAction, error) {
	if err := s.requireNonEmpty(id, "project id"); err != nil {
		return catalog.TradeAction{}, err
	}
	s.loadCatalog()
	if _, ok := catalog.Find(s.store.Get().Catalog, id); !ok {
		return catalog.TradeAction{}, apperr.New(apperr.CodeNotFound, "unknown project "+id, nil)
	}
	action := catalog.Trade(id)
	if action.Message != "" {
		s.notices.Info(action.Message)
	}
	return action, nil
}

// --- chat ---

// ChatReply is the guide's answer to one user message.
type ChatReply struct {
	Section chat.Section `json:"section"`
	Reply   chat.Message `json:"reply"`
}

// SendChat answers message in the given section. When section is empty and
// a layout is supplied, the section is located from the scroll position.
func (s *Service) SendChat(ctx context.Context, message, section string, scrollY float64, layout chat.Layout) (ChatReply, error) {
	sec := s.resolveSection(section, scrollY, layout)
	reply, err := s.chat.Send(message, sec)
	if err != nil {
		return ChatReply{}, err
	}
	return ChatReply{Section: sec, Reply: reply}, nil
}

func (s *Service) resolveSection(section string, scrollY float64, layout chat.Layout) chat.Section {
	if sec, ok := chat.ParseSection(section); ok {
		return sec
	}
	if len(layout) > 0 {
		return chat.Locate(scrollY, layout)
	}
	return chat.SectionHero
}

func (s *Service) ChatTranscript(ctx context.Context) ([]chat.Message, error) {
	return s.chat.Transcript(), nil
}

func (s *Service) ChatContext(ctx context.Context, section string) (chat.Card, error) {
	sec, ok := chat.ParseSection(section)
	if !ok {
		return chat.Card{}, apperr.Validation(fmt.Sprintf("unknown section %q", section))
	}
	return s.chat.Context(sec), nil
}

func (s *Service) ChatTutorial(ctx context.Context, name string) (chat.Message, error) {
	return s.chat.Tutorial(strings.ToLower(strings.TrimSpace(name)))
}

// --- notices, regions, feeds, signup ---

func (s *Service) ActiveNotice(ctx context.Context) (notify.Notice, bool, error) {
	n, ok := s.notices.Active()
	return n, ok, nil
}

func (s *Service) DismissNotice(ctx context.Context, id string) error {
	if !s.notices.Dismiss(id) {
		return apperr.New(apperr.CodeNotFound, "no active notice "+id, nil)
	}
	return nil
}

func (s *Service) Regions(ctx context.Context) ([]render.Region, error) {
	return s.renderer.Regions(), nil
}

func (s *Service) Feeds(ctx context.Context) (feed.Snapshot, error) {
	return s.feed.Snapshot(), nil
}

func (s *Service) CreatePost(ctx context.Context, content string) (feed.Post, error) {
	post, err := s.feed.CreatePost(content)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotConnected) {
			s.notices.Error("Please connect your wallet to post")
		} else if apperr.Is(err, apperr.CodeValidation) {
			s.notices.Error("Please enter a message to post")
		}
		return feed.Post{}, err
	}
	s.notices.Success("Post shared with the community! 🚀")
	return post, nil
}

func (s *Service) LikePost(ctx context.Context, id string) (feed.Post, error) {
	return s.feed.LikePost(id)
}

func (s *Service) Signup(ctx context.Context, email string) (signup.Result, error) {
	return s.signup.Join(ctx, email)
}

// --- periodic jobs ---

// PollMarket is the market timer job. The first poll also loads the catalog.
func (s *Service) PollMarket(ctx context.Context) {
	s.poller.Refresh(ctx)
	s.loadCatalog()
}

// RefreshPortfolio republishes the portfolio regions so price moves show up
// in the valuation.
func (s *Service) RefreshPortfolio(ctx context.Context) {
	s.store.Notify(state.TopicPortfolio)
}

// AccrueRewards is the staking timer job.
func (s *Service) AccrueRewards(ctx context.Context) { s.staking.Accrue() }

// TickFeeds is the live feed timer job.
func (s *Service) TickFeeds(ctx context.Context) { s.feed.Tick() }

func jsonEvent(feedName string, v any) (relay.Event, bool) {
	evt, err := relay.NewEvent(feedName, v)
	if err != nil {
		slog.Error("stream snapshot encode failed", "feed", feedName, "error", err)
		return relay.Event{}, false
	}
	return evt, true
}
