package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/dashboard"
	"MarketLens/internal/forecast"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"
	"MarketLens/internal/session"
)

type fakeRunner struct {
	mu      sync.Mutex
	symbols []string
}

func (f *fakeRunner) Run(_ context.Context, symbol, _ string) *dashboard.Report {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbol)
	f.mu.Unlock()

	day := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	switch symbol {
	case "ZZZZINVALID":
		return &dashboard.Report{Symbol: symbol, Outcome: dashboard.OutcomeEmptyResult, Message: "No data found for ZZZZINVALID."}
	case "FLAT":
		return &dashboard.Report{
			Symbol:       symbol,
			Outcome:      dashboard.OutcomeForecastError,
			Message:      "Forecast unavailable: series is constant",
			Points:       1,
			Tail:         []model.OHLCV{{Time: day, Close: 5}},
			HistoryChart: []byte(`<svg id="history"></svg>`),
		}
	default:
		return &dashboard.Report{
			Symbol:        symbol,
			Outcome:       dashboard.OutcomeSuccess,
			Points:        1,
			Tail:          []model.OHLCV{{Time: day, Open: 170, High: 172, Low: 169, Close: 171.5, Volume: 5e7}},
			Indicators:    &model.Indicators{LastClose: 171.5, RSI14: 48},
			HistoryChart:  []byte(`<svg id="history"></svg>`),
			Forecast:      []model.ForecastPoint{{Date: day.AddDate(0, 0, 1), Value: 171.64}},
			Model:         "ARIMA(0,1,0)",
			ForecastChart: []byte(`<svg id="forecast"></svg>`),
		}
	}
}

func (f *fakeRunner) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.symbols...)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	h := NewHandler(runner, session.NewMemoryStore(time.Hour), "AAPL")
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, runner
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		query   string
		want    []string
		notWant []string
	}{
		{
			name:  "default symbol on first visit",
			query: "",
			want:  []string{`value="AAPL"`, `<svg id="history">`, `<svg id="forecast">`, "171.64", "ARIMA(0,1,0)", "50000000"},
		},
		{
			name:    "empty result shows message only",
			query:   "?symbol=ZZZZINVALID",
			want:    []string{"No data found for ZZZZINVALID."},
			notWant: []string{"<svg", "7-day forecast"},
		},
		{
			name:    "forecast failure keeps history chart",
			query:   "?symbol=FLAT",
			want:    []string{`<svg id="history">`, "Forecast unavailable", "warn"},
			notWant: []string{`<svg id="forecast">`},
		},
		{
			name:    "blank symbol renders the form",
			query:   "?symbol=++",
			want:    []string{`<form`, `value=""`},
			notWant: []string{"<svg", "class=\"message"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.Client(), srv.URL+"/"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q", s)
				}
			}
		})
	}
}

func TestIndex_TrimsSymbol(t *testing.T) {
	srv, runner := newTestServer(t)
	get(t, srv.Client(), srv.URL+"/?symbol=%20MSFT%20")
	calls := runner.calls()
	if len(calls) != 1 || calls[0] != "MSFT" {
		t.Errorf("runner calls = %v, want [MSFT]", calls)
	}
}

func TestIndex_SessionRemembersSymbol(t *testing.T) {
	srv, runner := newTestServer(t)

	resp, _ := get(t, srv.Client(), srv.URL+"/?symbol=MSFT")
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.AddCookie(cookie)
	resp2, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if !strings.Contains(string(body), `value="MSFT"`) {
		t.Errorf("second visit should reuse MSFT")
	}
	if calls := runner.calls(); len(calls) != 2 || calls[1] != "MSFT" {
		t.Errorf("runner calls = %v", calls)
	}
	for _, c := range resp2.Cookies() {
		if c.Name == SessionCookie {
			t.Errorf("existing session should not get a new cookie")
		}
	}
}

func TestForecastAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		query   string
		status  int
		outcome string
	}{
		{"?symbol=AAPL", http.StatusOK, "SUCCESS"},
		{"?symbol=ZZZZINVALID", http.StatusOK, "EMPTY_RESULT"},
		{"?symbol=FLAT", http.StatusOK, "FORECAST_ERROR"},
		{"?symbol=", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, srv.Client(), srv.URL+"/api/forecast"+tt.query)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.outcome == "" {
				return
			}
			var got struct {
				Outcome  string                `json:"outcome"`
				Forecast []model.ForecastPoint `json:"forecast"`
			}
			if err := json.Unmarshal([]byte(body), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Outcome != tt.outcome {
				t.Errorf("outcome = %s, want %s", got.Outcome, tt.outcome)
			}
			if strings.Contains(body, "<svg") {
				t.Errorf("charts should not be part of the JSON report")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.Client(), srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != `{"status":"ok"}` {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
}

func TestIndex_EscapesSymbolInCharts(t *testing.T) {
	pipeline := dashboard.NewPipeline(
		collector.NewCollector(&collector.MockFetcher{Price: 100}),
		forecast.NewForecaster(forecast.DefaultAutoConfig()),
		recorder.NewNoopRecorder(),
	)
	h := NewHandler(pipeline, session.NewMemoryStore(time.Hour), "AAPL")
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	resp, body := get(t, srv.Client(), srv.URL+"/?symbol=X%3Cscript%3Ealert(1)%3C%2Fscript%3E")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<svg") {
		t.Fatal("expected the mock data to produce charts")
	}
	if strings.Contains(body, "<script>") {
		t.Error("symbol markup reached the page unescaped")
	}
}
