// Package currency pulls daily USD exchange-rate series from the quote
// service and normalizes them into the tidy rate table, optionally
// bucketed by ISO week.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/guttosm/macropulse/internal/aggregate"
	"github.com/guttosm/macropulse/internal/domain/errs"
	"github.com/guttosm/macropulse/internal/domain/models"
	"github.com/guttosm/macropulse/internal/fetch"
)

var weeklySpec = aggregate.Spec{
	Columns: []string{"Open", "Low", "High", "Close"},
	Funcs: map[string]aggregate.Func{
		"Open":  aggregate.Mean,
		"Low":   aggregate.Min,
		"High":  aggregate.Max,
		"Close": aggregate.Mean,
	},
}

// Adapter fetches daily rate candles for a configured symbol set.
type Adapter struct {
	client  *fetch.Client
	baseURL string
	symbols []string
	rng     models.DateRange
	byDay   bool
}

// New builds the adapter. rng must already be validated; the one-day
// offset compensating the feed's exclusive end bound is applied here.
func New(client *fetch.Client, baseURL string, symbols []string, rng models.DateRange, byDay bool) *Adapter {
	return &Adapter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		symbols: symbols,
		rng: models.DateRange{
			Start: rng.Start.AddDate(0, 0, 1),
			End:   rng.End.AddDate(0, 0, 1),
		},
		byDay: byDay,
	}
}

func (a *Adapter) Name() string { return "currency" }

// chartResponse mirrors the subset of the quote service payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Extract requests one daily series per symbol, sequentially, and
// returns the combined raw candles keyed by (date, symbol).
func (a *Adapter) Extract(ctx context.Context) ([]models.Candle, error) {
	var out []models.Candle
	for _, sym := range a.symbols {
		candles, err := a.fetchSymbol(ctx, sym)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", sym, err)
		}
		out = append(out, candles...)
	}
	return out, nil
}

func (a *Adapter) fetchSymbol(ctx context.Context, sym string) ([]models.Candle, error) {
	ticker := sym + "=X"
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(a.rng.Start.Unix()))
	q.Set("period2", fmt.Sprint(a.rng.End.Unix()))
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", a.baseURL, url.PathEscape(ticker), q.Encode())

	body, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.Schema(fmt.Sprintf("quote payload for %s: %v", ticker, err))
	}
	if resp.Chart.Error != nil {
		return nil, errs.Schema(fmt.Sprintf("quote service error for %s: %s", ticker, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errs.Schema(fmt.Sprintf("no result block for %s", ticker))
	}

	res := resp.Chart.Result[0]
	if len(res.Timestamp) == 0 {
		return nil, nil
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, errs.Schema(fmt.Sprintf("no quote block for %s", ticker))
	}
	quote := res.Indicators.Quote[0]

	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			// non-trading day
			continue
		}
		candle := models.Candle{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Symbol: ticker,
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
		}
		if v := at(adj, i); v != nil {
			candle.AdjClose = *v
		}
		if v := at(quote.Volume, i); v != nil {
			candle.Volume = *v
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

// Transform drops the adjusted-close and volume fields, renames symbols
// to the canonical "USD/<CODE>" form, and either emits the daily table
// or the weekly aggregation. Empty input yields an empty table that
// still carries the full column set.
func (a *Adapter) Transform(raw []models.Candle) (*models.Table, error) {
	if a.byDay {
		return a.daily(raw), nil
	}
	return a.weekly(raw), nil
}

func (a *Adapter) daily(raw []models.Candle) *models.Table {
	t := models.NewTable("Date", "Symbol", "Open", "Low", "High", "Close")
	rows := append([]models.Candle(nil), raw...)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	for _, c := range rows {
		t.Append(c.Date, canonical(c.Symbol), c.Open, c.Low, c.High, c.Close)
	}
	return t
}

func (a *Adapter) weekly(raw []models.Candle) *models.Table {
	t := models.NewTable("Symbol", "Start Week", "End Week", "Open", "Low", "High", "Close")
	if len(raw) == 0 {
		return t
	}

	rows := make([]aggregate.Row, 0, len(raw))
	for _, c := range raw {
		rows = append(rows, aggregate.Row{
			Key:  []string{canonical(c.Symbol)},
			Date: c.Date,
			Values: map[string]float64{
				"Open": c.Open, "Low": c.Low, "High": c.High, "Close": c.Close,
			},
		})
	}
	for _, b := range aggregate.Weekly(rows, weeklySpec) {
		t.Append(b.Key[0], b.Start, b.End, b.Values["Open"], b.Values["Low"], b.Values["High"], b.Values["Close"])
	}
	return t
}

// canonical rewrites the feed ticker ("TRY=X") as "USD/TRY".
func canonical(ticker string) string {
	return "USD/" + strings.TrimSuffix(ticker, "=X")
}
