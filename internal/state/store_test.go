package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, s *Store, session string) {
	t.Helper()
	require.NoError(t, s.Update(func(st *State) error {
		st.WalletConnected = true
		st.WalletAddress = "0xabc"
		st.SessionID = session
		st.EthBalance = 1.5
		st.TokenBalance = 5000
		return nil
	}, TopicWallet))
}

func TestUpdateRejectsNegativeBalance(t *testing.T) {
	s := NewStore()
	connect(t, s, "s1")

	err := s.Update(func(st *State) error {
		st.EthBalance -= 2
		st.TokenBalance += 100
		return nil
	})
	require.Error(t, err)

	got := s.Get()
	assert.Equal(t, 1.5, got.EthBalance)
	assert.Equal(t, 5000.0, got.TokenBalance)
}

func TestUpdateRejectsDisconnectedBalances(t *testing.T) {
	s := NewStore()
	err := s.Update(func(st *State) error {
		st.TokenBalance = 10
		return nil
	})
	require.Error(t, err)
	assert.Zero(t, s.Get().TokenBalance)
}

func TestUpdateErrorLeavesStateUntouched(t *testing.T) {
	s := NewStore()
	connect(t, s, "s1")
	boom := errors.New("boom")

	err := s.Update(func(st *State) error {
		st.EthBalance = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.5, s.Get().EthBalance)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(func(st *State) error {
		st.Market = &MarketSnapshot{PriceUSD: 1}
		st.Transactions = []Transaction{{ID: "t1"}}
		return nil
	}))

	got := s.Get()
	got.Market.PriceUSD = 99
	got.Transactions[0].ID = "mutated"

	again := s.Get()
	assert.Equal(t, 1.0, again.Market.PriceUSD)
	assert.Equal(t, "t1", again.Transactions[0].ID)
}

func TestListenersReceiveTopics(t *testing.T) {
	s := NewStore()
	var seen []Topic
	s.Subscribe(func(topics []Topic, st State) {
		seen = append(seen, topics...)
	})

	connect(t, s, "s1")
	s.Notify(TopicPortfolio)

	assert.Equal(t, []Topic{TopicWallet, TopicPortfolio}, seen)
}

func TestSettleRequiresSession(t *testing.T) {
	s := NewStore()
	err := s.Settle(context.Background(), 0, func(st *State) error { return nil })
	assert.True(t, apperr.Is(err, apperr.CodeNotConnected))
}

func TestSettleAppliesAfterDelay(t *testing.T) {
	s := NewStore()
	connect(t, s, "s1")

	err := s.Settle(context.Background(), 5*time.Millisecond, func(st *State) error {
		st.EthBalance -= 0.5
		return nil
	}, TopicWallet)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Get().EthBalance)
}

func TestSettleCancelledBySessionChange(t *testing.T) {
	s := NewStore()
	connect(t, s, "s1")

	done := make(chan error, 1)
	go func() {
		done <- s.Settle(context.Background(), time.Minute, func(st *State) error {
			st.EthBalance = 0
			return nil
		})
	}()

	// Give Settle time to capture the session before ending it.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Update(func(st *State) error {
		*st = State{Catalog: st.Catalog, Transactions: st.Transactions}
		return nil
	}))

	select {
	case err := <-done:
		assert.True(t, apperr.Is(err, apperr.CodeSessionChanged), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Settle did not return after the session ended")
	}
	assert.Zero(t, s.Get().EthBalance)
}

func TestSettleHonoursCallerContext(t *testing.T) {
	s := NewStore()
	connect(t, s, "s1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Settle(ctx, time.Second, func(st *State) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
