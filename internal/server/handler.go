// Package server exposes the dashboard over HTTP: an HTML page with the
// symbol form, charts and tables, plus a JSON endpoint with the same
// report.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"MarketLens/internal/dashboard"
	"MarketLens/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

//go:embed templates/index.html
var templateFS embed.FS

// Runner executes one dashboard run.
type Runner interface {
	Run(ctx context.Context, symbol, sessionID string) *dashboard.Report
}

type Handler struct {
	runner        Runner
	sessions      session.Store
	defaultSymbol string
	page          *template.Template
	logger        zerolog.Logger
}

func NewHandler(runner Runner, sessions session.Store, defaultSymbol string) *Handler {
	funcs := template.FuncMap{
		"price":  func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
		"volume": func(v float64) string { return decimal.NewFromFloat(v).Round(0).String() },
		"date":   func(t time.Time) string { return t.Format("2006-01-02") },
		"svg":    func(b []byte) template.HTML { return template.HTML(b) },
	}
	return &Handler{
		runner:        runner,
		sessions:      sessions,
		defaultSymbol: defaultSymbol,
		page:          template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")),
		logger:        log.With().Str("component", "handler").Logger(),
	}
}

// Routes returns the full handler chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /api/forecast", h.ForecastAPI)
	mux.HandleFunc("GET /healthz", h.Health)
	return withLogging(h.logger, withSession(mux))
}

type pageData struct {
	Symbol string
	Report *dashboard.Report
}

// Index renders the dashboard. Without a symbol parameter the session's
// last symbol (or the default) is used; an empty symbol shows only the form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())

	var symbol string
	if r.URL.Query().Has("symbol") {
		symbol = strings.TrimSpace(r.URL.Query().Get("symbol"))
	} else {
		symbol = h.lastSymbol(r.Context(), id)
	}

	data := pageData{Symbol: symbol}
	if symbol != "" {
		data.Report = h.run(r.Context(), symbol, id)
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.logger.Error().Err(err).Msg("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ForecastAPI returns the report as JSON. Every run outcome is a 200;
// only a missing symbol is a client error.
func (h *Handler) ForecastAPI(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol is required"})
		return
	}
	rep := h.run(r.Context(), symbol, sessionID(r.Context()))
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) run(ctx context.Context, symbol, id string) *dashboard.Report {
	rep := h.runner.Run(ctx, symbol, id)
	h.logger.Info().
		Str("session", id).
		Str("symbol", symbol).
		Str("outcome", rep.Outcome.String()).
		Dur("duration", rep.Duration).
		Msg("dashboard run")

	if err := h.sessions.Save(ctx, id, &session.State{Symbol: symbol}); err != nil {
		h.logger.Warn().Err(err).Str("session", id).Msg("save session")
	}
	return rep
}

func (h *Handler) lastSymbol(ctx context.Context, id string) string {
	st, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", id).Msg("load session")
	}
	if st == nil || st.Symbol == "" {
		return h.defaultSymbol
	}
	return st.Symbol
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
