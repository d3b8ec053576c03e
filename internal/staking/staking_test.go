package staking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, tokens float64) *state.Store {
	t.Helper()
	store := state.NewStore()
	require.NoError(t, store.Update(func(st *state.State) error {
		st.WalletConnected = true
		st.WalletAddress = "0xabc"
		st.SessionID = "s"
		st.TokenBalance = tokens
		return nil
	}))
	return store
}

func newEngine(store *state.Store) *Engine {
	return NewEngine(store, notify.NewCenter(time.Minute, "", nil), nil, 0)
}

func TestDailyEarnings(t *testing.T) {
	assert.InDelta(t, 4.1644, DailyEarnings(10000), 1e-4)
	assert.Zero(t, DailyEarnings(0))
}

func TestStakeWholeBalance(t *testing.T) {
	store := connected(t, 5000)
	tx, err := newEngine(store).Stake(context.Background(), 5000)
	require.NoError(t, err)

	st := store.Get()
	assert.Zero(t, st.TokenBalance)
	assert.Equal(t, 5000.0, st.StakedAmount)
	assert.Equal(t, state.TxStake, tx.Kind)
	assert.Equal(t, "5000 VOLVOT staked", tx.Description)
}

func TestStakeOverBalanceFails(t *testing.T) {
	store := connected(t, 5000)
	before := store.Get()

	_, err := newEngine(store).Stake(context.Background(), 5000.000001)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))
	assert.Equal(t, before, store.Get())
}

func TestStakeRejectsNonFiniteAmounts(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1)} {
		store := connected(t, 5000)
		before := store.Get()

		_, err := newEngine(store).Stake(context.Background(), amount)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount), "amount %v: got %v", amount, err)
		assert.Equal(t, before, store.Get())
	}
}

func TestStakeRequiresWallet(t *testing.T) {
	_, err := newEngine(state.NewStore()).Stake(context.Background(), 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotConnected))
}

func TestStakeUnstakeRoundTrip(t *testing.T) {
	store := connected(t, 5000)
	e := newEngine(store)

	_, err := e.Stake(context.Background(), 1200)
	require.NoError(t, err)

	e.Accrue()
	e.Accrue()
	rewards := store.Get().EarnedRewards
	assert.InDelta(t, 2*1200*PerMinuteRate, rewards, 1e-12)

	tx, err := e.Unstake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.TxUnstake, tx.Kind)

	st := store.Get()
	assert.InDelta(t, 5000+rewards, st.TokenBalance, 1e-9)
	assert.Zero(t, st.StakedAmount)
	assert.Zero(t, st.EarnedRewards)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, state.TxUnstake, st.Transactions[0].Kind)
}

func TestStakeUnstakeWithoutAccrualRestoresBalance(t *testing.T) {
	for _, tc := range []struct {
		balance, amount float64
	}{
		{5000, 1234.5678},
		{98765.4321, 0.1},
		{0.3, 0.1},
		{16554.25, 16554.25},
	} {
		store := connected(t, tc.balance)
		e := newEngine(store)

		_, err := e.Stake(context.Background(), tc.amount)
		require.NoError(t, err)
		_, err = e.Unstake(context.Background())
		require.NoError(t, err)

		st := store.Get()
		assert.Equal(t, tc.balance, st.TokenBalance, "stake %v of %v", tc.amount, tc.balance)
		assert.Zero(t, st.StakedAmount)
	}
}

func TestStakeRechecksBalanceAtConfirmation(t *testing.T) {
	store := connected(t, 5000)
	notices := notify.NewCenter(time.Minute, "", nil)
	e := NewEngine(store, notices, nil, 200*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		_, err := e.Stake(context.Background(), 4000)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		n, ok := notices.Active()
		return ok && n.Message == "Staking tokens..."
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Update(func(st *state.State) error {
		st.TokenBalance = 100
		return nil
	}))
	before := store.Get()

	select {
	case err := <-errCh:
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("stake did not finish")
	}
	assert.Equal(t, before, store.Get())
	n, _ := notices.Active()
	assert.Equal(t, "Invalid stake amount", n.Message)
}

func TestUnstakeWithoutStakeIsNoop(t *testing.T) {
	store := connected(t, 10)
	notices := notify.NewCenter(time.Minute, "", nil)
	tx, err := NewEngine(store, notices, nil, time.Hour).Unstake(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tx.ID)
	_, shown := notices.Active()
	assert.False(t, shown)
}

func TestAccrueSkipsWhenNothingStaked(t *testing.T) {
	store := connected(t, 10)
	notified := false
	store.Subscribe(func([]state.Topic, state.State) { notified = true })

	newEngine(store).Accrue()
	assert.Zero(t, store.Get().EarnedRewards)
	assert.False(t, notified)
}
