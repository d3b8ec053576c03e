// Package swap converts simulated WETH into VOLVOT at the current market
// rate.
package swap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/journal"
	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/textfmt"
	"github.com/google/uuid"
)

// Receipt describes a completed swap.
type Receipt struct {
	FromAmount  float64           `json:"from_amount"`
	ToAmount    float64           `json:"to_amount"`
	Rate        float64           `json:"rate"`
	Transaction state.Transaction `json:"transaction"`
}

// Calculator quotes and executes swaps.
type Calculator struct {
	store   *state.Store
	notices *notify.Center
	journal journal.Recorder
	delay   time.Duration
	now     func() time.Time
}

// NewCalculator creates a calculator. delay is the simulated confirmation
// time; rec may be nil.
func NewCalculator(store *state.Store, notices *notify.Center, rec journal.Recorder, delay time.Duration) *Calculator {
	return &Calculator{store: store, notices: notices, journal: rec, delay: delay, now: time.Now}
}

// Rate returns how many VOLVOT one WETH buys for the given state.
func Rate(st state.State) float64 {
	return 1 / st.PriceNative()
}

// Quote returns the unrounded VOLVOT amount fromAmount WETH would buy.
// It needs a market snapshot.
func (c *Calculator) Quote(fromAmount float64) (float64, error) {
	st := c.store.Get()
	if st.Market == nil {
		return 0, apperr.New(apperr.CodeMarketUnavailable, "no market snapshot yet", nil)
	}
	return fromAmount * Rate(st), nil
}

// Execute debits fromAmount WETH and credits the quoted VOLVOT after the
// confirmation delay.
func (c *Calculator) Execute(ctx context.Context, fromAmount float64) (rcpt Receipt, err error) {
	defer func() { metrics.Operation("swap", err) }()

	st := c.store.Get()
	if !st.WalletConnected {
		c.notices.Error("Please connect your wallet first")
		return Receipt{}, apperr.NotConnected()
	}
	if !(fromAmount > 0) || math.IsInf(fromAmount, 0) || fromAmount > st.EthBalance {
		c.notices.Error("Invalid swap amount")
		return Receipt{}, apperr.InvalidAmount(fmt.Sprintf("swap amount %v outside (0, %v]", fromAmount, st.EthBalance))
	}

	c.notices.Info("Executing swap...")

	var session string
	err = c.store.Settle(ctx, c.delay, func(st *state.State) error {
		if fromAmount > st.EthBalance {
			return apperr.InvalidAmount("ETH balance changed before confirmation")
		}
		rate := Rate(*st)
		received := fromAmount * rate
		tx := state.Transaction{
			ID:          uuid.NewString(),
			Kind:        state.TxSwap,
			Description: fmt.Sprintf("%s WETH → %s VOLVOT", plain(fromAmount), textfmt.Fixed(received, 2)),
			At:          c.now().UTC(),
		}
		st.EthBalance -= fromAmount
		st.TokenBalance += received
		st.AddTransaction(tx)

		session = st.SessionID
		rcpt = Receipt{FromAmount: fromAmount, ToAmount: received, Rate: rate, Transaction: tx}
		return nil
	}, state.TopicWallet, state.TopicPortfolio, state.TopicTransactions)
	if err != nil {
		slog.Info("swap aborted", "from_amount", fromAmount, "error", err)
		if apperr.Is(err, apperr.CodeInvalidAmount) {
			c.notices.Error("Invalid swap amount")
		}
		return Receipt{}, err
	}

	if c.journal != nil {
		c.journal.Record("swap", session, rcpt)
	}
	slog.Info("swap executed", "from_weth", fromAmount, "to_volvot", rcpt.ToAmount)
	c.notices.Success(fmt.Sprintf("Swapped %s WETH for %s VOLVOT!", plain(fromAmount), textfmt.Fixed(rcpt.ToAmount, 2)))
	return rcpt, nil
}

// plain renders an entered amount the way the user typed it.
func plain(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
