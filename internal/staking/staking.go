// Package staking locks simulated VOLVOT balances and accrues rewards at a
// fixed APY.
package staking

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
	"github.com/shopspring/decimal"
)

const (
	// APY is the fixed annual staking yield.
	APY = 0.152

	// PerMinuteRate is the reward fraction credited on each accrual tick.
	PerMinuteRate = APY / 365 / 24 / 60
)

// DailyEarnings estimates the reward one day of staking amount yields.
func DailyEarnings(amount float64) float64 {
	return amount * APY / 365
}

// Position summarises the current stake.
type Position struct {
	Staked  float64 `json:"staked"`
	Rewards float64 `json:"rewards"`
	APY     float64 `json:"apy"`
}

// Engine runs stake, unstake and reward accrual.
type Engine struct {
	store   *state.Store
	notices *notify.Center
	journal journal.Recorder
	delay   time.Duration
	now     func() time.Time
}

// NewEngine creates an engine. rec may be nil.
func NewEngine(store *state.Store, notices *notify.Center, rec journal.Recorder, delay time.Duration) *Engine {
	return &Engine{store: store, notices: notices, journal: rec, delay: delay, now: time.Now}
}

// Position reports the current stake.
func (e *Engine) Position() Position {
	st := e.store.Get()
	return Position{Staked: st.StakedAmount, Rewards: st.EarnedRewards, APY: APY}
}

// Stake moves amount from the token balance into the stake after the
// confirmation delay.
func (e *Engine) Stake(ctx context.Context, amount float64) (tx state.Transaction, err error) {
	defer func() { metrics.Operation("stake", err) }()

	st := e.store.Get()
	if !st.WalletConnected {
		e.notices.Error("Please connect your wallet first")
		return state.Transaction{}, apperr.NotConnected()
	}
	if !(amount > 0) || math.IsInf(amount, 0) || amount > st.TokenBalance {
		e.notices.Error("Invalid stake amount")
		return state.Transaction{}, apperr.InvalidAmount(fmt.Sprintf("stake amount %v outside (0, %v]", amount, st.TokenBalance))
	}

	e.notices.Info("Staking tokens...")

	var session string
	err = e.store.Settle(ctx, e.delay, func(st *state.State) error {
		if amount > st.TokenBalance {
			return apperr.InvalidAmount("token balance changed before confirmation")
		}
		st.TokenBalance = add(st.TokenBalance, -amount)
		st.StakedAmount = add(st.StakedAmount, amount)
		tx = state.Transaction{
			ID:          uuid.NewString(),
			Kind:        state.TxStake,
			Description: fmt.Sprintf("%s VOLVOT staked", plain(amount)),
			At:          e.now().UTC(),
		}
		st.AddTransaction(tx)
		session = st.SessionID
		return nil
	}, state.TopicWallet, state.TopicPortfolio, state.TopicStaking, state.TopicTransactions)
	if err != nil {
		slog.Info("stake aborted", "amount", amount, "error", err)
		if apperr.Is(err, apperr.CodeInvalidAmount) {
			e.notices.Error("Invalid stake amount")
		}
		return state.Transaction{}, err
	}

	if e.journal != nil {
		e.journal.Record("stake", session, tx)
	}
	slog.Info("tokens staked", "amount", amount)
	e.notices.Success(fmt.Sprintf("Successfully staked %s VOLVOT!", plain(amount)))
	return tx, nil
}

// Unstake returns the stake plus rewards to the token balance after the
// confirmation delay. It does nothing when nothing is staked.
func (e *Engine) Unstake(ctx context.Context) (tx state.Transaction, err error) {
	st := e.store.Get()
	if st.StakedAmount <= 0 {
		return state.Transaction{}, nil
	}
	defer func() { metrics.Operation("unstake", err) }()

	e.notices.Info("Unstaking tokens...")

	var session string
	err = e.store.Settle(ctx, e.delay, func(st *state.State) error {
		if st.StakedAmount <= 0 {
			return nil
		}
		returned := add(st.StakedAmount, st.EarnedRewards)
		st.TokenBalance = add(st.TokenBalance, returned)
		st.StakedAmount = 0
		st.EarnedRewards = 0
		tx = state.Transaction{
			ID:          uuid.NewString(),
			Kind:        state.TxUnstake,
			Description: fmt.Sprintf("%s VOLVOT unstaked", textfmt.Fixed(returned, 2)),
			At:          e.now().UTC(),
		}
		st.AddTransaction(tx)
		session = st.SessionID
		return nil
	}, state.TopicWallet, state.TopicPortfolio, state.TopicStaking, state.TopicTransactions)
	if err != nil {
		slog.Info("unstake aborted", "error", err)
		return state.Transaction{}, err
	}
	if tx.ID == "" {
		return tx, nil
	}

	if e.journal != nil {
		e.journal.Record("unstake", session, tx)
	}
	slog.Info("tokens unstaked", "description", tx.Description)
	e.notices.Success("Successfully unstaked tokens!")
	return tx, nil
}

// Accrue credits one tick of rewards. It does nothing while nothing is
// staked.
func (e *Engine) Accrue() {
	var credited float64
	err := e.store.Update(func(st *state.State) error {
		if st.StakedAmount <= 0 {
			return nil
		}
		credited = st.StakedAmount * PerMinuteRate
		st.EarnedRewards += credited
		return nil
	})
	if err != nil {
		slog.Error("reward accrual failed", "error", err)
		return
	}
	if credited > 0 {
		e.store.Notify(state.TopicPortfolio, state.TopicStaking)
		slog.Debug("rewards accrued", "credited", credited)
	}
}

// add sums balances at decimal precision, so amounts typed as decimals
// cancel out exactly.
func add(a, b float64) float64 {
	sum, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Float64()
	return sum
}

func plain(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
