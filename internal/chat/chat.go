// Package chat implements the site guide: a keyword responder with
// per-section context help and scripted tutorials.
package chat

import (
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/dgnsrekt/volvot/internal/staking"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/swap"
	"github.com/dgnsrekt/volvot/internal/textfmt"
	"gopkg.in/yaml.v3"
)

// Section is a named page region used as conversation context.
type Section string

const (
	SectionHero       Section = "hero"
	SectionExplorer   Section = "explorer"
	SectionTrading    Section = "trading"
	SectionStaking    Section = "staking"
	SectionTokenomics Section = "tokenomics"
	SectionPortfolio  Section = "portfolio"
)

// Sections lists the page regions from top to bottom.
var Sections = []Section{SectionHero, SectionExplorer, SectionTrading, SectionStaking, SectionTokenomics, SectionPortfolio}

// ParseSection validates a section name.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Layout maps each section to the top offset of its anchor element. The
// hero section is measured at the features element that follows it.
type Layout map[Section]float64

// Locate returns the section being read at scrollY: the first section whose
// anchor lies more than 200 pixels below the top of the viewport, or the
// last section when scrolled past all of them.
func Locate(scrollY float64, layout Layout) Section {
	pos := scrollY + 200
	for _, sec := range Sections {
		if top, ok := layout[sec]; ok && pos < top {
			return sec
		}
	}
	return SectionPortfolio
}

// Facts are the live numbers quoted in replies.
type Facts struct {
	Price     string
	Change    string
	MarketCap string
	Rate      string
	APY       string

	Connected  bool
	EthBalance string
}

// FactsFrom extracts reply facts from the current state.
func FactsFrom(st state.State) Facts {
	f := Facts{
		Price:      strconv.FormatFloat(state.FallbackPriceUSD, 'f', -1, 64),
		Change:     "N/A",
		MarketCap:  textfmt.Compact(16554),
		APY:        textfmt.Fixed(staking.APY*100, 1) + "%",
		Connected:  st.WalletConnected,
		EthBalance: textfmt.Fixed(st.EthBalance, 4),
	}
	if m := st.Market; m != nil {
		f.Price = strconv.FormatFloat(m.PriceUSD, 'f', -1, 64)
		f.Change = textfmt.Fixed(m.Change24h, 2)
		if m.MarketCapUSD > 0 {
			f.MarketCap = textfmt.Compact(m.MarketCapUSD)
		}
		f.Rate = textfmt.Compact(swap.Rate(st))
	}
	return f
}

//go:embed replies.yaml
var repliesYAML []byte

type keywordReply struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Action is a quick action offered on a context card. Exactly one of Ask
// and Tutorial is set.
type Action struct {
	Label    string `yaml:"label" json:"label"`
	Ask      string `yaml:"ask,omitempty" json:"ask,omitempty"`
	Tutorial string `yaml:"tutorial,omitempty" json:"tutorial,omitempty"`
}

// Card is the context help shown for a section.
type Card struct {
	Section     Section  `yaml:"-" json:"section"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Actions     []Action `yaml:"actions" json:"actions"`
}

type replyFile struct {
	Context   map[Section]keywordReply `yaml:"context"`
	General   []keywordReply           `yaml:"general"`
	Fallback  string                   `yaml:"fallback"`
	Cards     map[Section]Card         `yaml:"cards"`
	Tutorials map[string]string        `yaml:"tutorials"`
}

type matcher struct {
	name     string
	keywords []string
	tmpl     *template.Template
}

func (m matcher) matches(lower string) bool {
	for _, k := range m.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Responder selects canned replies. It keeps no conversation state.
type Responder struct {
	context   map[Section]matcher
	general   []matcher
	fallback  *template.Template
	cards     map[Section]Card
	tutorials map[string]*template.Template
}

// NewResponder parses the embedded reply set.
func NewResponder() (*Responder, error) {
	return parseReplies(repliesYAML)
}

func parseReplies(data []byte) (*Responder, error) {
	var f replyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("chat: parse replies: %w", err)
	}

	r := &Responder{
		context:   make(map[Section]matcher),
		cards:     make(map[Section]Card),
		tutorials: make(map[string]*template.Template),
	}
	compile := func(name, body string) (*template.Template, error) {
		t, err := template.New(name).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("chat: reply %q: %w", name, err)
		}
		return t, nil
	}

	for sec, kr := range f.Context {
		t, err := compile("context/"+string(sec), kr.Reply)
		if err != nil {
			return nil, err
		}
		r.context[sec] = matcher{name: string(sec), keywords: kr.Keywords, tmpl: t}
	}
	for _, kr := range f.General {
		t, err := compile(kr.Name, kr.Reply)
		if err != nil {
			return nil, err
		}
		r.general = append(r.general, matcher{name: kr.Name, keywords: kr.Keywords, tmpl: t})
	}
	fb, err := compile("fallback", f.Fallback)
	if err != nil {
		return nil, err
	}
	r.fallback = fb

	for _, sec := range Sections {
		card, ok := f.Cards[sec]
		if !ok {
			return nil, fmt.Errorf("chat: no context card for %q", sec)
		}
		card.Section = sec
		r.cards[sec] = card
	}
	for name, body := range f.Tutorials {
		t, err := compile("tutorial/"+name, body)
		if err != nil {
			return nil, err
		}
		r.tutorials[name] = t
	}
	return r, nil
}

type replyData struct {
	Facts
	Message string
	Section Section
}

// Respond picks the reply for message read in section. Context keyword sets
// of the current section are tried first, then the general sets in order,
// then the catch-all. Matching is case-insensitive substring containment.
func (r *Responder) Respond(message string, section Section, facts Facts) (string, string) {
	lower := strings.ToLower(message)
	data := replyData{Facts: facts, Message: message, Section: section}

	if m, ok := r.context[section]; ok && m.matches(lower) {
		return m.name, execute(m.tmpl, data)
	}
	for _, m := range r.general {
		if m.matches(lower) {
			return m.name, execute(m.tmpl, data)
		}
	}
	return "fallback", execute(r.fallback, data)
}

// Card returns the context help for section, defaulting to the hero card.
func (r *Responder) Card(section Section) Card {
	if c, ok := r.cards[section]; ok {
		return c
	}
	return r.cards[SectionHero]
}

// Tutorial renders a scripted tutorial by name.
func (r *Responder) Tutorial(name string, facts Facts) (string, bool) {
	t, ok := r.tutorials[name]
	if !ok {
		return "", false
	}
	return execute(t, replyData{Facts: facts}), true
}

// TutorialNames lists the available tutorials in name order.
func (r *Responder) TutorialNames() []string {
	names := make([]string, 0, len(r.tutorials))
	for n := range r.tutorials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func execute(t *template.Template, data replyData) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "Sorry, something went wrong preparing that answer."
	}
	return b.String()
}
