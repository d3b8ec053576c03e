// Package render derives the text of every named display region from the
// application state and publishes it to connected clients.
package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/volvot/internal/catalog"
	"github.com/dgnsrekt/volvot/internal/portfolio"
	"github.com/dgnsrekt/volvot/internal/staking"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/swap"
	"github.com/dgnsrekt/volvot/internal/textfmt"
)

// Region is the full content of one display region. HTML regions carry
// markup; the rest carry plain text.
type Region struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	HTML     bool   `json:"html,omitempty"`
	Class    string `json:"class,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

var topicOrder = []state.Topic{
	state.TopicMarket,
	state.TopicWallet,
	state.TopicPortfolio,
	state.TopicStaking,
	state.TopicTransactions,
	state.TopicCatalog,
}

// Derive returns every region that depends on topic. It is a pure function
// of st.
func Derive(st state.State, topic state.Topic) []Region {
	switch topic {
	case state.TopicMarket:
		return marketRegions(st)
	case state.TopicWallet:
		return walletRegions(st)
	case state.TopicPortfolio:
		return portfolioRegions(st)
	case state.TopicStaking:
		return []Region{{ID: "staking-positions", Text: stakingMarkup(st), HTML: true}}
	case state.TopicTransactions:
		return []Region{{ID: "recent-transactions", Text: transactionsMarkup(st), HTML: true}}
	case state.TopicCatalog:
		html, err := catalog.RenderCards(st.Catalog)
		if err != nil {
			slog.Error("catalog render failed", "error", err)
			return nil
		}
		return []Region{{ID: "verified-projects", Text: html, HTML: true}}
	}
	return nil
}

// All returns every region for st in a stable order.
func All(st state.State) []Region {
	var out []Region
	for _, t := range topicOrder {
		out = append(out, Derive(st, t)...)
	}
	return out
}

func marketRegions(st state.State) []Region {
	if st.Market == nil {
		return nil
	}
	m := st.Market
	class := "stat-change positive"
	if m.Change24h < 0 {
		class = "stat-change negative"
	}
	return []Region{
		{ID: "token-price", Text: textfmt.Price(m.PriceUSD)},
		{ID: "price-change", Text: textfmt.Change(m.Change24h), Class: class},
		{ID: "market-cap", Text: textfmt.Compact(m.MarketCapUSD)},
		{ID: "volume", Text: textfmt.Compact(m.Volume24h)},
		{ID: "liquidity", Text: textfmt.Compact(m.LiquidityUSD)},
		{ID: "exchange-rate", Text: fmt.Sprintf("1 WETH = %s VOLVOT", textfmt.Compact(swap.Rate(st)))},
	}
}

func walletRegions(st state.State) []Region {
	if !st.WalletConnected {
		return []Region{
			{ID: "connect-wallet", Text: "Connect Wallet"},
			{ID: "swap-button", Text: "Connect Wallet", Disabled: true},
			{ID: "stake-btn", Text: "Connect Wallet", Disabled: true},
			{ID: "eth-balance", Text: textfmt.Fixed(0, 4)},
			{ID: "volvot-balance", Text: textfmt.Compact(0)},
			{ID: "stake-balance", Text: textfmt.Compact(0)},
		}
	}
	return []Region{
		{ID: "connect-wallet", Text: textfmt.Address(st.WalletAddress)},
		{ID: "swap-button", Text: "Swap"},
		{ID: "stake-btn", Text: "Stake VOLVOT"},
		{ID: "eth-balance", Text: textfmt.Fixed(st.EthBalance, 4)},
		{ID: "volvot-balance", Text: textfmt.Compact(st.TokenBalance)},
		{ID: "stake-balance", Text: textfmt.Compact(st.TokenBalance)},
	}
}

func portfolioRegions(st state.State) []Region {
	s := portfolio.Value(st)
	class := "stat-change positive"
	if s.Change24h < 0 {
		class = "stat-change negative"
	}
	return []Region{
		{ID: "portfolio-value", Text: s.ValueText()},
		{ID: "total-volvot", Text: textfmt.Compact(s.TotalTokens)},
		{ID: "total-rewards", Text: textfmt.Fixed(s.Rewards, 4)},
		{ID: "user-staked", Text: textfmt.Fixed(s.Staked, 2) + " VOLVOT"},
		{ID: "user-earnings", Text: s.EarningsText()},
		{ID: "portfolio-change", Text: s.ChangeText(), Class: class},
	}
}

var positionTmpl = template.Must(template.New("position").Parse(
	`{{if gt .Staked 0.0}}<div class="staking-position">
  <div class="position-header"><strong>{{.StakedText}} VOLVOT</strong><span class="apy-badge">{{.APYText}} APY</span></div>
  <div class="position-info">
    <div class="info-row"><span>Staked Amount</span><span>{{.StakedText}} VOLVOT</span></div>
    <div class="info-row"><span>Rewards Earned</span><span class="text-success">{{.RewardsText}} VOLVOT</span></div>
    <div class="info-row"><span>Lock Remaining</span><span>6 days</span></div>
  </div>
  <button class="unstake-button" data-action="unstake">Unstake</button>
</div>{{else}}<div class="empty-state"><p>No active staking positions</p><small>Start staking to earn passive income</small></div>{{end}}`))

func stakingMarkup(st state.State) string {
	data := struct {
		Staked      float64
		StakedText  string
		RewardsText string
		APYText     string
	}{
		Staked:      st.StakedAmount,
		StakedText:  textfmt.Fixed(st.StakedAmount, 2),
		RewardsText: textfmt.Fixed(st.EarnedRewards, 4),
		APYText:     textfmt.Fixed(staking.APY*100, 1) + "%",
	}
	var b strings.Builder
	if err := positionTmpl.Execute(&b, data); err != nil {
		slog.Error("staking position render failed", "error", err)
	}
	return b.String()
}

var txTmpl = template.Must(template.New("transactions").Funcs(template.FuncMap{
	"clock": func(tx state.Transaction) string { return tx.At.Local().Format("15:04:05") },
}).Parse(`{{range .}}<div class="transaction-item">
  <div class="transaction-icon">{{.Kind.Icon}}</div>
  <div class="transaction-details"><div class="transaction-desc">{{.Description}}</div><div class="transaction-time">{{clock .}}</div></div>
</div>
{{else}}<div class="empty-state"><p>No transactions yet</p></div>{{end}}`))

func transactionsMarkup(st state.State) string {
	var b strings.Builder
	if err := txTmpl.Execute(&b, st.Transactions); err != nil {
		slog.Error("transaction list render failed", "error", err)
	}
	return b.String()
}
