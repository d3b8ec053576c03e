// Package state holds the single application state of the site and the
// store that serialises every mutation of it.
package state

import (
	"fmt"
	"time"

	"github.com/dgnsrekt/volvot/internal/catalog"
)

// MarketSnapshot is the most recently fetched (or fallback) market record.
type MarketSnapshot struct {
	PriceUSD     float64   `json:"price_usd"`
	PriceNative  float64   `json:"price_native"`
	Change24h    float64   `json:"change_24h"`
	Volume24h    float64   `json:"volume_24h"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	Fallback     bool      `json:"fallback"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// TxKind classifies a transaction-history record.
type TxKind string

const (
	TxSwap    TxKind = "swap"
	TxStake   TxKind = "stake"
	TxUnstake TxKind = "unstake"
)

// Icon returns the glyph shown next to a history entry of this kind.
func (k TxKind) Icon() string {
	if k == TxSwap {
		return "💱"
	}
	return "🏦"
}

// Transaction is one entry of the simulated transaction history.
type Transaction struct {
	ID          string    `json:"id"`
	Kind        TxKind    `json:"kind"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// State is the whole application state. Values returned by Store are
// copies; mutate only through Store.Update.
type State struct {
	WalletConnected bool   `json:"wallet_connected"`
	WalletAddress   string `json:"wallet_address,omitempty"`
	SessionID       string `json:"session_id,omitempty"`

	TokenBalance  float64 `json:"token_balance"`
	EthBalance    float64 `json:"eth_balance"`
	StakedAmount  float64 `json:"staked_amount"`
	EarnedRewards float64 `json:"earned_rewards"`

	Market       *MarketSnapshot `json:"market,omitempty"`
	Catalog      []catalog.Entry `json:"catalog"`
	Transactions []Transaction   `json:"transactions"`
}

// AddTransaction records tx as the newest history entry.
func (s *State) AddTransaction(tx Transaction) {
	s.Transactions = append([]Transaction{tx}, s.Transactions...)
}

func (s State) clone() State {
	out := s
	if s.Market != nil {
		m := *s.Market
		out.Market = &m
	}
	out.Catalog = append([]catalog.Entry(nil), s.Catalog...)
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	return out
}

// validate checks the invariants every committed state must satisfy.
func (s State) validate() error {
	if s.TokenBalance < 0 || s.EthBalance < 0 || s.StakedAmount < 0 || s.EarnedRewards < 0 {
		return fmt.Errorf("negative balance (token=%v eth=%v staked=%v rewards=%v)",
			s.TokenBalance, s.EthBalance, s.StakedAmount, s.EarnedRewards)
	}
	if s.WalletConnected {
		if s.WalletAddress == "" {
			return fmt.Errorf("connected wallet without address")
		}
		return nil
	}
	if s.WalletAddress != "" || s.SessionID != "" {
		return fmt.Errorf("disconnected wallet keeps address or session")
	}
	if s.TokenBalance != 0 || s.EthBalance != 0 || s.StakedAmount != 0 || s.EarnedRewards != 0 {
		return fmt.Errorf("disconnected wallet keeps balances")
	}
	return nil
}

// TokenPriceUSD returns the snapshot price, or the demo price when no
// snapshot has been installed yet.
func (s State) TokenPriceUSD() float64 {
	if s.Market != nil && s.Market.PriceUSD > 0 {
		return s.Market.PriceUSD
	}
	return FallbackPriceUSD
}

// PriceNative returns the token price in the native asset, defaulting to
// the demo rate when unknown.
func (s State) PriceNative() float64 {
	if s.Market != nil && s.Market.PriceNative > 0 {
		return s.Market.PriceNative
	}
	return FallbackPriceNative
}

const (
	FallbackPriceUSD    = 0.00001655
	FallbackPriceNative = 0.000000003583
)
