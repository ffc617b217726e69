package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"MarketLens/internal/console"
	"MarketLens/internal/dashboard"

	"github.com/spf13/cobra"
)

func newForecastCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "forecast [symbol]",
		Short: "Run the dashboard once and print it to the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			symbol := cfg.Server.DefaultSymbol
			if len(args) == 1 {
				symbol = strings.TrimSpace(args[0])
			}
			if symbol == "" {
				return fmt.Errorf("symbol must not be empty")
			}

			rec := buildRecorder(cmd.Context(), cfg)
			defer rec.Close()

			rep := buildPipeline(cfg, rec).Run(cmd.Context(), symbol, "")
			fmt.Fprint(cmd.OutOrStdout(), console.FormatReport(rep))

			if outDir != "" {
				if err := writeCharts(outDir, rep); err != nil {
					return err
				}
			}
			if rep.Failed() {
				return fmt.Errorf("%s: %s", rep.Outcome, rep.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the SVG charts to")
	return cmd
}

// writeCharts saves whichever charts the run produced.
func writeCharts(dir string, rep *dashboard.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	charts := []struct {
		suffix string
		data   []byte
	}{
		{"history", rep.HistoryChart},
		{"forecast", rep.ForecastChart},
	}
	for _, c := range charts {
		if len(c.data) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.svg", fileSafe(rep.Symbol), c.suffix))
		if err := os.WriteFile(path, c.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func fileSafe(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, symbol)
}
