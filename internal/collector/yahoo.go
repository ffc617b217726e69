package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"MarketLens/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooOptions configures a YahooFetcher.
type YahooOptions struct {
	BaseURL        string
	ProxyURL       string
	Timeout        time.Duration
	RequestsPerSec float64
}

// YahooFetcher implements Fetcher using the Yahoo Finance v8 chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: opts.BaseURL,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		logger:  log.With().Str("component", "yahoo").Logger(),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// FetchDailyBars downloads daily bars for [start, end], both days inclusive.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("period1", fmt.Sprint(model.Day(start).Unix()))
	q.Set("period2", fmt.Sprint(model.Day(end).AddDate(0, 0, 1).Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	f.logger.Debug().Str("symbol", symbol).Str("url", u).Msg("fetching daily bars")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	bars, err := parseChart(body, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	f.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched daily bars")
	return bars, nil
}

// parseChart converts a chart API response into daily bars. A "Not Found"
// error and a result without timestamps both yield no bars and no error.
func parseChart(body []byte, status int) ([]model.OHLCV, error) {
	if !gjson.ValidBytes(body) {
		if status != http.StatusOK {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", status, truncate(body, 200))
		}
		return nil, fmt.Errorf("yahoo decode: invalid JSON")
	}

	chart := gjson.GetBytes(body, "chart")
	if apiErr := chart.Get("error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		if apiErr.Get("code").String() == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo api error: %s", apiErr.Get("description").String())
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", status, truncate(body, 200))
	}

	result := chart.Get("result.0")
	if !result.Exists() {
		return nil, nil
	}
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, nil
	}

	loc := exchangeLocation(result.Get("meta"))
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	if len(closes) != len(timestamps) {
		return nil, fmt.Errorf("yahoo decode: %d timestamps but %d closes", len(timestamps), len(closes))
	}

	bars := make([]model.OHLCV, 0, len(timestamps))
	for i, ts := range timestamps {
		if closes[i].Type == gjson.Null {
			continue // skip null bars (holidays, halts)
		}
		c := closes[i].Float()
		bars = append(bars, model.OHLCV{
			Time:   model.Day(time.Unix(ts.Int(), 0).In(loc)),
			Open:   orDefault(opens, i, c),
			High:   orDefault(highs, i, c),
			Low:    orDefault(lows, i, c),
			Close:  c,
			Volume: orDefault(volumes, i, 0),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func exchangeLocation(meta gjson.Result) *time.Location {
	if name := meta.Get("exchangeTimezoneName").String(); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if off := meta.Get("gmtoffset"); off.Exists() {
		return time.FixedZone("exchange", int(off.Int()))
	}
	return time.UTC
}

// orDefault returns values[i], or def when it is missing or null.
func orDefault(values []gjson.Result, i int, def float64) float64 {
	if i >= len(values) || values[i].Type == gjson.Null {
		return def
	}
	return values[i].Float()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
