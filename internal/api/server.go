package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/catalog"
	"github.com/dgnsrekt/volvot/internal/chat"
	"github.com/dgnsrekt/volvot/internal/controller"
	"github.com/dgnsrekt/volvot/internal/feed"
	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/relay"
	"github.com/dgnsrekt/volvot/internal/render"
	"github.com/dgnsrekt/volvot/internal/signup"
	"github.com/dgnsrekt/volvot/internal/staking"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/swap"
	"github.com/dgnsrekt/volvot/internal/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	Market(ctx context.Context) (controller.MarketView, error)
	RefreshMarket(ctx context.Context) (controller.MarketView, error)
	Wallet(ctx context.Context) (wallet.Status, error)
	ConnectWallet(ctx context.Context) (wallet.Status, error)
	DisconnectWallet(ctx context.Context) (wallet.Status, error)
	Quote(ctx context.Context, fromAmount float64) (controller.SwapQuote, error)
	Swap(ctx context.Context, fromAmount float64) (swap.Receipt, error)
	Stake(ctx context.Context, amount float64) (state.Transaction, error)
	Unstake(ctx context.Context) (state.Transaction, error)
	StakingPosition(ctx context.Context) (staking.Position, error)
	EstimateStake(ctx context.Context, amount float64) (controller.StakeEstimate, error)
	Portfolio(ctx context.Context) (controller.PortfolioView, error)
	Transactions(ctx context.Context) ([]state.Transaction, error)
	Catalog(ctx context.Context, filter, term string) ([]catalog.Entry, error)
	CatalogMarkup(ctx context.Context, filter, term string) (string, error)
	TradeProject(ctx context.Context, id string) (catalog.TradeAction, error)
	SendChat(ctx context.Context, message, section string, scrollY float64, layout chat.Layout) (controller.ChatReply, error)
	ChatTranscript(ctx context.Context) ([]chat.Message, error)
	ChatContext(ctx context.Context, section string) (chat.Card, error)
	ChatTutorial(ctx context.Context, name string) (chat.Message, error)
	ActiveNotice(ctx context.Context) (notify.Notice, bool, error)
	DismissNotice(ctx context.Context, id string) error
	Regions(ctx context.Context) ([]render.Region, error)
	Feeds(ctx context.Context) (feed.Snapshot, error)
	CreatePost(ctx context.Context, content string) (feed.Post, error)
	LikePost(ctx context.Context, id string) (feed.Post, error)
	Signup(ctx context.Context, email string) (signup.Result, error)
	Broker() *relay.Broker
	StreamSnapshot() []relay.Event
}

// Limits bounds inbound API traffic per client address. A zero PerSecond
// disables limiting.
type Limits struct {
	PerSecond float64
	Burst     int
}

type statusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func newStatus(s string) *statusOutput {
	out := &statusOutput{}
	out.Body.Status = s
	return out
}

type amountInput struct {
	Body struct {
		Amount float64 `json:"amount" doc:"Amount entered by the user"`
	}
}

func NewServer(svc Service, limits Limits) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	if limits.PerSecond > 0 {
		router.Use(newRateLimiter(limits.PerSecond, limits.Burst).Handler)
	}

	cfg := huma.DefaultConfig("VOLVOT Site API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/streams", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(streamDocsHTML)); err != nil {
			slog.Debug("stream docs response write failed", "error", err)
		}
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get("/events", relay.SSEHandler(svc.Broker(), svc.StreamSnapshot))
	router.Get("/ws", relay.WSHandler(svc.Broker(), svc.StreamSnapshot))

	registerMarketHandlers(api, svc)
	registerTradeHandlers(api, svc)
	registerCatalogHandlers(api, svc)
	registerChatHandlers(api, svc)
	registerMiscHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apperr.CodeValidation, apperr.CodeInvalidAmount:
			return huma.Error400BadRequest(coded.Message)
		case apperr.CodeNotConnected, apperr.CodeSessionChanged:
			return huma.Error409Conflict(coded.Message)
		case apperr.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeWalletProvider, apperr.CodeNetwork:
			return huma.Error502BadGateway(coded.Message)
		case apperr.CodeMarketUnavailable:
			return huma.Error503ServiceUnavailable(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return huma.Error503ServiceUnavailable("request cancelled before the operation completed")
	}
	return huma.Error500InternalServerError(err.Error())
}
