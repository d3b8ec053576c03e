package catalog

import (
	"html/template"
	"strings"

	"github.com/dgnsrekt/volvot/internal/textfmt"
)

var cardTmpl = template.Must(template.New("cards").Funcs(template.FuncMap{
	"compact": textfmt.Compact,
	"upper":   func(b Badge) string { return strings.ToUpper(string(b)) },
	"initial": func(s string) string {
		if s == "" {
			return ""
		}
		return s[:1]
	},
	"chart": func(url string) string {
		if url == "" {
			return "#"
		}
		return url
	},
}).Parse(`{{range .}}<div class="project-card" data-category="{{.Category}}">
  <div class="project-header">
    <img src="{{.Logo}}" alt="{{.Name}}" class="project-logo" data-initial="{{initial .Symbol}}">
    <div class="project-info"><h3>{{.Name}}</h3><div class="symbol">{{.Symbol}}</div></div>
  </div>
  <div class="verification-badges">{{range .Badges}}<span class="badge {{.}}">{{upper .}}</span>{{end}}</div>
  <p>{{.Description}}</p>
  <div class="project-stats">
    <div class="stat-item"><div class="label">Price</div><div class="value">${{.Price}}</div></div>
    <div class="stat-item"><div class="label">Market Cap</div><div class="value">${{compact .MarketCap}}</div></div>
    <div class="stat-item"><div class="label">24h Volume</div><div class="value">${{compact .Volume24h}}</div></div>
    <div class="stat-item"><div class="label">Liquidity</div><div class="value">${{compact .Liquidity}}</div></div>
  </div>
  <div class="project-actions">
    <button class="action-button primary" data-trade="{{.ID}}">Trade</button>
    <a href="{{chart .Chart}}" target="_blank" class="action-button">View Chart</a>
  </div>
</div>
{{end}}`))

// RenderCards renders the explorer card markup for entries.
func RenderCards(entries []Entry) (string, error) {
	var b strings.Builder
	if err := cardTmpl.Execute(&b, entries); err != nil {
		return "", err
	}
	return b.String(), nil
}
