// Package wallet simulates connecting and disconnecting a user wallet.
// Balances are seeded locally; nothing is signed or submitted.
package wallet

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/metrics"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/google/uuid"
)

const (
	DemoAddress      = "0x742d35cc9b5c47ec35c6c4c8b34c9b2ee9d4e7f4"
	DemoEthBalance   = 1.5
	DemoTokenBalance = 5000

	maxSeedEth   = 2
	maxSeedToken = 10000
)

// ErrNoProvider means no injected wallet is available; the simulator falls
// back to the demo wallet.
var ErrNoProvider = errors.New("wallet: no provider")

// Provider requests the user's accounts from an injected wallet.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
}

// Simulator owns the connect/disconnect flow.
type Simulator struct {
	store    *state.Store
	provider Provider
	notices  *notify.Center

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewSimulator creates a simulator. provider may be nil.
func NewSimulator(store *state.Store, provider Provider, notices *notify.Center, seed uint64) *Simulator {
	return &Simulator{
		store:    store,
		provider: provider,
		notices:  notices,
		rand:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Connect attaches a wallet. Connecting an already connected wallet is a
// no-op.
func (s *Simulator) Connect(ctx context.Context) (err error) {
	defer func() { metrics.Operation("connect", err) }()

	if s.store.Get().WalletConnected {
		return nil
	}

	address, eth, token, demo, err := s.resolve(ctx)
	if err != nil {
		s.notices.Error("Failed to connect wallet")
		return err
	}

	err = s.store.Update(func(st *state.State) error {
		if st.WalletConnected {
			return nil
		}
		st.WalletConnected = true
		st.WalletAddress = address
		st.SessionID = uuid.NewString()
		st.EthBalance = eth
		st.TokenBalance = token
		st.StakedAmount = 0
		st.EarnedRewards = 0
		return nil
	}, state.TopicWallet, state.TopicPortfolio, state.TopicStaking)
	if err != nil {
		return err
	}

	slog.Info("wallet connected", "address", address, "demo", demo)
	if demo {
		s.notices.Success("Demo wallet connected!")
	} else {
		s.notices.Success("Wallet connected successfully!")
	}
	return nil
}

func (s *Simulator) resolve(ctx context.Context) (address string, eth, token float64, demo bool, err error) {
	if s.provider == nil {
		return DemoAddress, DemoEthBalance, DemoTokenBalance, true, nil
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	switch {
	case errors.Is(err, ErrNoProvider):
		slog.Debug("no injected wallet, using demo account")
		return DemoAddress, DemoEthBalance, DemoTokenBalance, true, nil
	case err != nil:
		return "", 0, 0, false, apperr.New(apperr.CodeWalletProvider, "wallet provider rejected the request", err)
	case len(accounts) == 0 || accounts[0] == "":
		return "", 0, 0, false, apperr.New(apperr.CodeWalletProvider, "wallet provider returned no accounts", nil)
	}

	s.randMu.Lock()
	eth = s.rand.Float64() * maxSeedEth
	token = s.rand.Float64() * maxSeedToken
	s.randMu.Unlock()
	return accounts[0], eth, token, false, nil
}

// Disconnect clears the wallet unconditionally. Pending operations of the
// ended session are cancelled.
func (s *Simulator) Disconnect() error {
	err := s.store.Update(func(st *state.State) error {
		st.WalletConnected = false
		st.WalletAddress = ""
		st.SessionID = ""
		st.EthBalance = 0
		st.TokenBalance = 0
		st.StakedAmount = 0
		st.EarnedRewards = 0
		return nil
	}, state.TopicWallet, state.TopicPortfolio, state.TopicStaking)
	metrics.Operation("disconnect", err)
	if err != nil {
		return err
	}
	slog.Info("wallet disconnected")
	s.notices.Info("Wallet disconnected")
	return nil
}

// Status is the externally visible wallet state.
type Status struct {
	Connected    bool    `json:"connected"`
	Address      string  `json:"address,omitempty"`
	EthBalance   float64 `json:"eth_balance"`
	TokenBalance float64 `json:"token_balance"`
	StakedAmount float64 `json:"staked_amount"`
	Rewards      float64 `json:"earned_rewards"`
}

// Status reports the current wallet.
func (s *Simulator) Status() Status {
	st := s.store.Get()
	return Status{
		Connected:    st.WalletConnected,
		Address:      st.WalletAddress,
		EthBalance:   st.EthBalance,
		TokenBalance: st.TokenBalance,
		StakedAmount: st.StakedAmount,
		Rewards:      st.EarnedRewards,
	}
}
