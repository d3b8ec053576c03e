package chat

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponder(t *testing.T) *Responder {
	t.Helper()
	r, err := NewResponder()
	require.NoError(t, err)
	return r
}

var snapshotFacts = FactsFrom(state.State{Market: &state.MarketSnapshot{
	PriceUSD:     0.00001655,
	PriceNative:  0.000000003583,
	Change24h:    249,
	MarketCapUSD: 16554,
}})

func TestLocate(t *testing.T) {
	layout := Layout{
		SectionHero:       800,
		SectionExplorer:   1600,
		SectionTrading:    2400,
		SectionStaking:    3200,
		SectionTokenomics: 4000,
		SectionPortfolio:  4800,
	}
	tests := []struct {
		scrollY float64
		want    Section
	}{
		{0, SectionHero},
		{599, SectionHero},
		{600, SectionExplorer},
		{2100, SectionTrading},
		{2200, SectionStaking},
		{4599, SectionPortfolio},
		{10000, SectionPortfolio},
	}
	for _, tt := range tests {
		if got := Locate(tt.scrollY, layout); got != tt.want {
			t.Errorf("Locate(%v) = %q; want %q", tt.scrollY, got, tt.want)
		}
	}
}

func TestLocateSkipsMissingAnchors(t *testing.T) {
	assert.Equal(t, SectionStaking, Locate(0, Layout{SectionStaking: 500}))
	assert.Equal(t, SectionPortfolio, Locate(0, Layout{}))
}

func TestPriceQuestionInTradingContext(t *testing.T) {
	topic, reply := newResponder(t).Respond("what is the price", SectionTrading, snapshotFacts)
	assert.Equal(t, "price", topic)
	assert.Contains(t, reply, "Current VOLVOT price: $0.00001655")
	assert.Contains(t, reply, "24h change: 249.00%")
	assert.Contains(t, reply, "Market cap: $16.6K")
}

func TestContextSetsWinOverGeneral(t *testing.T) {
	r := newResponder(t)

	topic, reply := r.Respond("How do I TRADE safely?", SectionTrading, snapshotFacts)
	assert.Equal(t, "trading", topic)
	assert.Contains(t, reply, "1 WETH = 279.1M VOLVOT")

	topic, _ = r.Respond("how do rewards work", SectionStaking, snapshotFacts)
	assert.Equal(t, "staking", topic)

	topic, _ = r.Respond("token utility?", SectionTokenomics, snapshotFacts)
	assert.Equal(t, "tokenomics", topic)

	topic, _ = r.Respond("How do I trade safely?", SectionExplorer, snapshotFacts)
	assert.Equal(t, "risk", topic)
}

func TestGeneralOrderAndFallback(t *testing.T) {
	r := newResponder(t)
	tests := []struct {
		message string
		want    string
	}{
		{"is it audited and what does it cost", "price"},
		{"is this project verified", "verification"},
		{"connect my wallet", "wallet"},
		{"is this safe", "risk"},
		{"tell me a joke", "fallback"},
	}
	for _, tt := range tests {
		topic, _ := r.Respond(tt.message, SectionHero, snapshotFacts)
		assert.Equal(t, tt.want, topic, tt.message)
	}
}

func TestFallbackEscapesMessage(t *testing.T) {
	_, reply := newResponder(t).Respond(`<script>x</script>`, SectionPortfolio, snapshotFacts)
	assert.NotContains(t, reply, "<script>")
	assert.Contains(t, reply, "(portfolio)")
}

func TestTradingContextBeforeSnapshot(t *testing.T) {
	_, reply := newResponder(t).Respond("how", SectionTrading, FactsFrom(state.State{}))
	assert.Contains(t, reply, "Loading...")
}

func TestCardsAndTutorials(t *testing.T) {
	r := newResponder(t)
	for _, sec := range Sections {
		c := r.Card(sec)
		assert.NotEmpty(t, c.Title, sec)
		assert.Len(t, c.Actions, 2, sec)
	}
	assert.Equal(t, SectionHero, r.Card("nowhere").Section)

	body, ok := r.Tutorial("trading", FactsFrom(state.State{}))
	require.True(t, ok)
	assert.Contains(t, body, "Let's start with wallet connection")

	body, ok = r.Tutorial("trading", FactsFrom(state.State{WalletConnected: true, WalletAddress: "0x1", EthBalance: 1.5}))
	require.True(t, ok)
	assert.Contains(t, body, "1.5000 WETH available")

	_, ok = r.Tutorial("nope", Facts{})
	assert.False(t, ok)
}

func TestWidgetTranscript(t *testing.T) {
	w := NewWidget(newResponder(t), state.NewStore())

	_, err := w.Send("   ", SectionHero)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	reply, err := w.Send("what is the price", SectionTrading)
	require.NoError(t, err)
	assert.Equal(t, RoleGuide, reply.Role)

	_, err = w.Tutorial("tour")
	require.NoError(t, err)

	got := w.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, RoleUser, got[0].Role)
	assert.Equal(t, "what is the price", got[0].Content)
	assert.True(t, strings.HasPrefix(got[2].Topic, "tutorial/"))
}

func TestUnknownTutorialListsAvailable(t *testing.T) {
	r := newResponder(t)
	assert.Equal(t, []string{"staking", "tour", "trading"}, r.TutorialNames())

	w := NewWidget(r, state.NewStore())
	_, err := w.Tutorial("nope")
	var coded *apperr.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, apperr.CodeNotFound, coded.Code)
	assert.Equal(t, `unknown tutorial "nope" (available: staking, tour, trading)`, coded.Message)
	assert.Empty(t, w.Transcript())
}

func TestWidgetTranscriptIsBounded(t *testing.T) {
	w := NewWidget(newResponder(t), state.NewStore())
	for i := 0; i < MaxTranscript; i++ {
		_, err := w.Send("hello", SectionHero)
		require.NoError(t, err)
	}
	assert.Len(t, w.Transcript(), MaxTranscript)
}
