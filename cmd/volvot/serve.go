package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/volvot/internal/api"
	"github.com/dgnsrekt/volvot/internal/config"
	"github.com/dgnsrekt/volvot/internal/controller"
	"github.com/dgnsrekt/volvot/internal/journal"
	"github.com/dgnsrekt/volvot/internal/market"
	"github.com/dgnsrekt/volvot/internal/netutil"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/scheduler"
	"github.com/dgnsrekt/volvot/internal/wallet"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogger(cfg.LogLevel, cfg.LogFile)
		return serve(cfg)
	},
}

func newService(cfg *config.Config, rec journal.Recorder) (*controller.Service, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var provider wallet.Provider
	if url := cfg.WalletCDPURL(); url != "" {
		provider = wallet.NewBrowserProvider(url, cfg.WalletTabURLFilter, cfg.HTTPTimeout)
	}

	return controller.NewService(controller.Options{
		Fetcher:      market.NewClient(httpClient, cfg.PairURL()),
		FetchTimeout: cfg.HTTPTimeout,
		Provider:     provider,
		Journal:      rec,
		Notices:      notify.NewCenter(cfg.NoticeTTL, cfg.NTFYEndpoint, httpClient),
		TxDelay:      cfg.TxConfirmDelay,
		SignupDelay:  cfg.TxConfirmDelay,
		Seed:         uint64(time.Now().UnixNano()),
	})
}

func serve(cfg *config.Config) error {
	slog.Info("config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"pair_url", cfg.PairURL(),
		"market_poll_interval", cfg.MarketPollInterval,
		"wallet_cdp_url", cfg.WalletCDPURL(),
		"ntfy_enabled", cfg.NTFYEndpoint != "",
		"journal_dir", cfg.JournalDir,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	rec := journal.NewWriter(cfg.JournalDir, 256, 25)
	defer func() {
		if err := rec.Close(); err != nil {
			slog.Error("journal close failed", "error", err)
		}
	}()

	svc, err := newService(cfg, rec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc.PollMarket(ctx)

	sched := scheduler.New()
	jobs := []struct {
		name     string
		interval time.Duration
		job      scheduler.Job
	}{
		{"market-poll", cfg.MarketPollInterval, svc.PollMarket},
		{"portfolio-refresh", cfg.PortfolioRefreshInterval, svc.RefreshPortfolio},
		{"staking-accrual", cfg.AccrualInterval, svc.AccrueRewards},
		{"live-feeds", cfg.FeedInterval, svc.TickFeeds},
	}
	for _, j := range jobs {
		if err := sched.Every(j.name, j.interval, j.job); err != nil {
			return err
		}
	}
	svc.TickFeeds(ctx)
	sched.Start()

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		return fmt.Errorf("select bind address (preferred %s): %w", cfg.BindAddr, err)
	}
	bindAddr := ln.Addr().String()

	srv := &http.Server{
		Handler:           api.NewServer(svc, api.Limits{PerSecond: cfg.APIRateLimit, Burst: cfg.APIRateBurst}),
		ReadHeaderTimeout: 10 * time.Second,
		// Stream handlers end when the signal context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("volvot listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", "error", err)
			sched.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	return nil
}
