// Package console renders dashboard reports for the terminal.
package console

import (
	"fmt"
	"strings"
	"time"

	"MarketLens/internal/dashboard"
	"MarketLens/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	forecastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

const dateLayout = "2006-01-02"

// Price formats a price with two decimals.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Volume formats a share count without decimals.
func Volume(v float64) string {
	return decimal.NewFromFloat(v).Round(0).String()
}

// FormatReport renders a full run: outcome line, price preview,
// indicators and the forecast table when present.
func FormatReport(rep *dashboard.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("MarketLens | %s", rep.Symbol)))
	b.WriteString("\n")
	b.WriteString(FormatOutcome(rep))
	b.WriteString("\n")

	if len(rep.Tail) > 0 {
		b.WriteString(fmt.Sprintf("\n%d daily closes since %s\n", rep.Points, rep.Tail[0].Time.Format(dateLayout)))
		b.WriteString(FormatTail(rep.Tail))
	}
	if rep.Indicators != nil {
		b.WriteString("\n")
		b.WriteString(FormatIndicators(rep.Indicators))
	}
	if len(rep.Forecast) > 0 {
		b.WriteString("\n")
		if rep.Model != "" {
			b.WriteString(fmt.Sprintf("Model: %s (AIC %.2f)\n", rep.Model, rep.AIC))
		}
		b.WriteString(FormatForecast(rep.Forecast))
	}
	return b.String()
}

// FormatOutcome renders the status line of a report.
func FormatOutcome(rep *dashboard.Report) string {
	switch rep.Outcome {
	case dashboard.OutcomeSuccess:
		return okStyle.Render("OK") + fmt.Sprintf(" %d-day forecast ready (%s)", len(rep.Forecast), rep.Duration.Round(time.Millisecond))
	case dashboard.OutcomeEmptyResult, dashboard.OutcomeForecastError:
		return warnStyle.Render(rep.Outcome.String()) + " " + rep.Message
	default:
		return errStyle.Render(rep.Outcome.String()) + " " + rep.Message
	}
}

// FormatTail renders the last bars as a fixed-width table.
func FormatTail(bars []model.OHLCV) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %10s %10s %10s %10s %14s", "Date", "Open", "High", "Low", "Close", "Volume")))
	b.WriteString("\n")
	for _, bar := range bars {
		b.WriteString(fmt.Sprintf("%-10s %10s %10s %10s %10s %14s\n",
			bar.Time.Format(dateLayout), Price(bar.Open), Price(bar.High),
			Price(bar.Low), Price(bar.Close), Volume(bar.Volume)))
	}
	return b.String()
}

// FormatIndicators renders the summary statistics. Windows the series was
// too short for are shown as n/a.
func FormatIndicators(ind *model.Indicators) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Last close: %s\n", Price(ind.LastClose)))
	b.WriteString(fmt.Sprintf("MA50: %s | MA200: %s\n", optional(ind.MA50), optional(ind.MA200)))
	b.WriteString(fmt.Sprintf("RSI14: %.1f\n", ind.RSI14))
	b.WriteString(fmt.Sprintf("52w range: %s - %s\n", Price(ind.Low52w), Price(ind.High52w)))
	return b.String()
}

// FormatForecast renders the forecast table.
func FormatForecast(points []model.ForecastPoint) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %10s", "Date", "Forecast")))
	b.WriteString("\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("%-10s %s\n", p.Date.Format(dateLayout),
			forecastStyle.Render(fmt.Sprintf("%10s", Price(p.Value)))))
	}
	return b.String()
}

func optional(v float64) string {
	if v == 0 {
		return "n/a"
	}
	return Price(v)
}
