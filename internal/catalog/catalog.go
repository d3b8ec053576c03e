// Package catalog holds the static list of verified projects shown in
// explorer mode.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups catalog entries for the explorer filter tabs.
type Category string

const (
	CategoryAll            Category = "all"
	CategoryDefi           Category = "defi"
	CategoryInfrastructure Category = "infrastructure"
)

// Badge is a verification badge shown on a project card.
type Badge string

const (
	BadgeKYC     Badge = "kyc"
	BadgeAudited Badge = "audited"
	BadgePremium Badge = "premium"
)

// HomeID is the id of the site's own token entry.
const HomeID = "volvot"

// Entry is one verified project.
type Entry struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Symbol       string   `yaml:"symbol" json:"symbol"`
	Logo         string   `yaml:"logo" json:"logo"`
	Category     Category `yaml:"category" json:"category"`
	Price        string   `yaml:"price" json:"price"`
	MarketCap    float64  `yaml:"market_cap" json:"market_cap"`
	Volume24h    float64  `yaml:"volume_24h" json:"volume_24h"`
	Liquidity    float64  `yaml:"liquidity" json:"liquidity"`
	Badges       []Badge  `yaml:"badges" json:"badges"`
	Description  string   `yaml:"description" json:"description"`
	Verified     bool     `yaml:"verified" json:"verified"`
	AuditScore   int      `yaml:"audit_score" json:"audit_score"`
	KYCCompleted bool     `yaml:"kyc_completed" json:"kyc_completed"`
	Website      string   `yaml:"website,omitempty" json:"website,omitempty"`
	Chart        string   `yaml:"chart,omitempty" json:"chart,omitempty"`
}

// Quote carries live market figures copied onto the home entry at load time.
type Quote struct {
	Price     string
	MarketCap float64
	Volume24h float64
	Liquidity float64
}

//go:embed fixtures.yaml
var fixtureYAML []byte

type fixtureFile struct {
	Entries []Entry `yaml:"entries"`
}

// Load parses the embedded fixture. When q is non-nil its non-zero figures
// replace the fixture figures of the home entry.
func Load(q *Quote) ([]Entry, error) {
	return parse(fixtureYAML, q)
}

func parse(data []byte, q *Quote) ([]Entry, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Entries))
	for i, e := range f.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog: entry[%d] missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog: duplicate id %q", e.ID)
		}
		seen[e.ID] = true
		for _, b := range e.Badges {
			switch b {
			case BadgeKYC, BadgeAudited, BadgePremium:
			default:
				return nil, fmt.Errorf("catalog: entry %q has unknown badge %q", e.ID, b)
			}
		}
	}
	if q != nil {
		for i := range f.Entries {
			if f.Entries[i].ID == HomeID {
				applyQuote(&f.Entries[i], *q)
			}
		}
	}
	return f.Entries, nil
}

func applyQuote(e *Entry, q Quote) {
	if q.Price != "" {
		e.Price = q.Price
	}
	if q.MarketCap > 0 {
		e.MarketCap = q.MarketCap
	}
	if q.Volume24h > 0 {
		e.Volume24h = q.Volume24h
	}
	if q.Liquidity > 0 {
		e.Liquidity = q.Liquidity
	}
}

// List returns the entries of the given category in fixture order; "all"
// (or empty) returns every entry.
func List(entries []Entry, filter Category) []Entry {
	if filter == "" || filter == CategoryAll {
		return append([]Entry(nil), entries...)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Category == filter {
			out = append(out, e)
		}
	}
	return out
}

// Search narrows entries to those whose name or symbol contains term,
// ignoring case. An empty term keeps everything.
func Search(entries []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Entry(nil), entries...)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), term) || strings.Contains(strings.ToLower(e.Symbol), term) {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry with the given id.
func Find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// TradeAction describes what the explorer's Trade button does for an entry.
type TradeAction struct {
	ProjectID string `json:"project_id"`
	ScrollTo  string `json:"scroll_to,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Trade resolves the Trade button: the home token jumps to the trading
// section, every other project is announced as coming soon.
func Trade(id string) TradeAction {
	if id == HomeID {
		return TradeAction{ProjectID: id, ScrollTo: "trading"}
	}
	return TradeAction{
		ProjectID: id,
		Message:   fmt.Sprintf("Trading for %s will be available soon!", strings.ToUpper(id)),
	}
}
