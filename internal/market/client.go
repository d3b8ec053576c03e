package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 1 << 20

// Client fetches a single DexScreener pair.
type Client struct {
	http    *http.Client
	pairURL string
	now     func() time.Time
}

// NewClient returns a client for pairURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient *http.Client, pairURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, pairURL: pairURL, now: time.Now}
}

// Fetch requests the pair and converts it into a snapshot. Every failure is
// a NETWORK coded error.
func (c *Client) Fetch(ctx context.Context) (state.MarketSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pairURL, nil)
	if err != nil {
		return state.MarketSnapshot{}, apperr.New(apperr.CodeNetwork, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return state.MarketSnapshot{}, apperr.New(apperr.CodeNetwork, "request pair", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return state.MarketSnapshot{}, apperr.New(apperr.CodeNetwork, "read body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return state.MarketSnapshot{}, apperr.New(apperr.CodeNetwork, fmt.Sprintf("pair endpoint status=%d", resp.StatusCode), nil)
	}

	snap, err := ParsePair(body)
	if err != nil {
		return state.MarketSnapshot{}, apperr.New(apperr.CodeNetwork, "parse pair", err)
	}
	snap.FetchedAt = c.now().UTC()
	return snap, nil
}

// ParsePair extracts the snapshot fields from a pairs-endpoint body.
func ParsePair(body []byte) (state.MarketSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return state.MarketSnapshot{}, fmt.Errorf("malformed JSON body")
	}
	pair := gjson.GetBytes(body, "pair")
	if !pair.Exists() || !pair.IsObject() {
		return state.MarketSnapshot{}, fmt.Errorf("response has no pair object")
	}

	priceUSD, err := decimalField(pair, "priceUsd")
	if err != nil {
		return state.MarketSnapshot{}, err
	}
	priceNative, err := decimalField(pair, "priceNative")
	if err != nil {
		return state.MarketSnapshot{}, err
	}

	marketCap := pair.Get("marketCap").Float()
	if marketCap == 0 {
		marketCap = pair.Get("fdv").Float()
	}

	return state.MarketSnapshot{
		PriceUSD:     priceUSD,
		PriceNative:  priceNative,
		Change24h:    pair.Get("priceChange.h24").Float(),
		Volume24h:    pair.Get("volume.h24").Float(),
		MarketCapUSD: marketCap,
		LiquidityUSD: pair.Get("liquidity.usd").Float(),
	}, nil
}

// decimalField parses a decimal-string field; a missing field is zero.
func decimalField(obj gjson.Result, path string) (float64, error) {
	v := obj.Get(path)
	if !v.Exists() || v.String() == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", path, err)
	}
	f, _ := d.Float64()
	return f, nil
}
