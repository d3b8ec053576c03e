package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestLoadFixture(t *testing.T) {
	entries, err := Load(nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, []string{"volvot", "base-protocol", "compound-base", "aave-base", "uniswap-base"}, ids(entries))
	assert.Equal(t, "0.00001655", entries[0].Price)
	assert.Equal(t, []Badge{BadgeKYC, BadgeAudited, BadgePremium}, entries[0].Badges)
}

func TestLoadAppliesQuoteToHomeEntryOnly(t *testing.T) {
	entries, err := Load(&Quote{Price: "0.00002", MarketCap: 20000, Volume24h: 700, Liquidity: 13000})
	require.NoError(t, err)

	home, ok := Find(entries, HomeID)
	require.True(t, ok)
	assert.Equal(t, "0.00002", home.Price)
	assert.Equal(t, 20000.0, home.MarketCap)
	assert.Equal(t, 700.0, home.Volume24h)
	assert.Equal(t, 13000.0, home.Liquidity)

	base, ok := Find(entries, "base-protocol")
	require.True(t, ok)
	assert.Equal(t, "1.2450", base.Price)
}

func TestListDefiKeepsFixtureOrder(t *testing.T) {
	entries, err := Load(nil)
	require.NoError(t, err)

	got := List(entries, CategoryDefi)
	assert.Equal(t, []string{"volvot", "compound-base", "aave-base", "uniswap-base"}, ids(got))
	assert.Len(t, List(entries, CategoryAll), 5)
	assert.Len(t, List(entries, ""), 5)
	assert.Equal(t, []string{"base-protocol"}, ids(List(entries, CategoryInfrastructure)))
	assert.Empty(t, List(entries, Category("gaming")))
}

func TestSearchComposesWithFilter(t *testing.T) {
	entries, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"uniswap-base"}, ids(Search(List(entries, CategoryDefi), "UNI")))
	assert.Equal(t, []string{"base-protocol"}, ids(Search(entries, "base")))
	assert.Empty(t, Search(List(entries, CategoryDefi), "base"))
	assert.Len(t, Search(entries, "  "), 5)
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	_, err := parse([]byte("entries:\n  - id: a\n  - id: a\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	_, err = parse([]byte("entries:\n  - id: a\n    badges: [gold]\n"), nil)
	require.Error(t, err)
}

func TestTrade(t *testing.T) {
	assert.Equal(t, "trading", Trade(HomeID).ScrollTo)
	got := Trade("aave-base")
	assert.Empty(t, got.ScrollTo)
	assert.Equal(t, "Trading for AAVE-BASE will be available soon!", got.Message)
}

func TestRenderCards(t *testing.T) {
	entries, err := Load(nil)
	require.NoError(t, err)

	html, err := RenderCards(List(entries, CategoryInfrastructure))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, `class="project-card"`))
	assert.Contains(t, html, "<h3>Base Protocol</h3>")
	assert.Contains(t, html, "$125.4M")
	assert.Contains(t, html, `<span class="badge audited">AUDITED</span>`)
	assert.Contains(t, html, `href="#"`)
}
