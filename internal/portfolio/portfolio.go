// Package portfolio values the simulated wallet at current market prices.
package portfolio

import (
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/textfmt"
)

// EthPriceUSD is the assumed ETH price used for valuation.
const EthPriceUSD = 3000

// Summary is the valued portfolio.
type Summary struct {
	ValueUSD      float64 `json:"value_usd"`
	TotalTokens   float64 `json:"total_tokens"`
	Staked        float64 `json:"staked"`
	Rewards       float64 `json:"rewards"`
	RewardsUSD    float64 `json:"rewards_usd"`
	Change24h     float64 `json:"change_24h"`
	TokenPriceUSD float64 `json:"token_price_usd"`
}

// Value computes the summary for st.
func Value(st state.State) Summary {
	price := st.TokenPriceUSD()
	var change float64
	if st.Market != nil {
		change = st.Market.Change24h
	}
	return Summary{
		ValueUSD:      (st.TokenBalance+st.StakedAmount)*price + st.EthBalance*EthPriceUSD,
		TotalTokens:   st.TokenBalance + st.StakedAmount,
		Staked:        st.StakedAmount,
		Rewards:       st.EarnedRewards,
		RewardsUSD:    st.EarnedRewards * price,
		Change24h:     change,
		TokenPriceUSD: price,
	}
}

// ValueText renders the portfolio value, e.g. "$4500.08".
func (s Summary) ValueText() string { return "$" + textfmt.Fixed(s.ValueUSD, 2) }

// ChangeText renders the 24h change, e.g. "+249.00% (24h)".
func (s Summary) ChangeText() string { return textfmt.Change(s.Change24h) + " (24h)" }

// EarningsText renders the USD value of earned rewards.
func (s Summary) EarningsText() string { return "$" + textfmt.Fixed(s.RewardsUSD, 2) + " earned" }
