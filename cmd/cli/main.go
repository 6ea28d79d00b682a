package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"absentee/adapters/charts"
	"absentee/adapters/excel"
	"absentee/domain/attendance"
	"absentee/internal/dashboard"
	"absentee/internal/errors"
	"absentee/internal/logging"
	"absentee/internal/report"
	"absentee/internal/testkit"
)

// Output formats of the analyze command
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "sickdays",
		Short:         "Test sick-day hypotheses on an employee attendance file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDescribeCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	var age, sickDays int
	var format, chartsDir string
	var bins int

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Run both hypothesis tests for the given thresholds",
		Long: `Run the sex and age hypothesis tests on a CSV or XLSX file.

Thresholds default to the column minimum, like the dashboard sliders.

Example: sickdays analyze stats.csv --age 35 --sick-days 2 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(args[0])
			if err != nil {
				return err
			}

			th := ds.DefaultThresholds()
			if cmd.Flags().Changed("age") {
				th.AgeThreshold = age
			}
			if cmd.Flags().Changed("sick-days") {
				th.SickDaysThreshold = sickDays
			}

			d, err := dashboard.Compute(ds, th, dashboard.Options{Bins: bins})
			if err != nil {
				return err
			}

			if chartsDir != "" {
				if err := writeCharts(chartsDir, d); err != nil {
					return err
				}
			}
			return writeDashboard(cmd.OutOrStdout(), format, d)
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "Age threshold (default: minimum Age)")
	cmd.Flags().IntVar(&sickDays, "sick-days", 0, "Sick-days threshold (default: minimum Num_sick_days)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json or markdown")
	cmd.Flags().StringVar(&chartsDir, "charts", "", "Directory to write the four SVG charts into")
	cmd.Flags().IntVar(&bins, "bins", dashboard.DefaultBins, "Histogram bins")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Summarize a dataset: rows, observed ranges and sex labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(args[0])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), ds)
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultConfig()
	var out, format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic attendance file with known effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}
			if format != "csv" && format != "xlsx" {
				return errors.InvalidInput(fmt.Sprintf("unsupported format %q: use csv or xlsx", format))
			}

			ds, err := testkit.Generate(cfg)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return errors.Wrapf(err, "cannot create %s", out)
			}
			if format == "xlsx" {
				err = testkit.WriteXLSX(f, ds)
			} else {
				err = testkit.WriteCSV(f, ds)
			}
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", ds.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "sick_days.csv", "Output file path")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or xlsx (default inferred from --out)")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of employees")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (deterministic)")
	cmd.Flags().Float64Var(&cfg.MaleShare, "male-share", cfg.MaleShare, "Share of men in the population")
	cmd.Flags().IntVar(&cfg.OlderThan, "older-than", cfg.OlderThan, "Age above which OlderExtra applies")
	cmd.Flags().Float64Var(&cfg.BaseSickDays, "base", cfg.BaseSickDays, "Mean sick days of a young woman")
	cmd.Flags().Float64Var(&cfg.MaleExtra, "male-extra", cfg.MaleExtra, "Extra mean sick days for men")
	cmd.Flags().Float64Var(&cfg.OlderExtra, "older-extra", cfg.OlderExtra, "Extra mean sick days for older employees")

	return cmd
}

func loadFile(path string) (*attendance.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeNotFound, errors.Wrapf(err, "cannot open %s", path))
	}
	defer f.Close()
	return excel.Load(f, filepath.Base(path))
}

func writeDashboard(w io.Writer, format string, d *dashboard.Dashboard) error {
	switch format {
	case formatText:
		writeText(w, d)
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case formatMarkdown:
		md, err := report.Markdown(d)
		if err != nil {
			return err
		}
		_, err = w.Write(md)
		return err
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown format %q: use text, json or markdown", format))
	}
}

func writeText(w io.Writer, d *dashboard.Dashboard) {
	fmt.Fprintf(w, "File: %s (%d rows)\n", d.Filename, d.Rows)
	fmt.Fprintf(w, "Age threshold: %d (observed %s)\n", d.Thresholds.AgeThreshold, d.AgeRange)
	fmt.Fprintf(w, "Sick-days threshold: %d (observed %s)\n", d.Thresholds.SickDaysThreshold, d.SickDaysRange)
	for i, h := range d.Hypotheses {
		fmt.Fprintf(w, "\nHypothesis %d: %s\n", i+1, h.Statement)
		fmt.Fprintf(w, "  [%s] %s\n", h.Verdict.Status, h.Verdict.Text)
	}
}

func writeCharts(dir string, d *dashboard.Dashboard) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create %s", dir)
	}

	renderer := charts.NewRenderer()
	for _, name := range dashboard.ChartNames {
		path := filepath.Join(dir, name+".svg")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "cannot create %s", path)
		}
		err = renderer.Render(f, name, d)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func describe(w io.Writer, ds *attendance.Dataset) {
	fmt.Fprintf(w, "File: %s\n", ds.Filename)
	fmt.Fprintf(w, "Rows: %d\n", ds.Len())
	fmt.Fprintf(w, "Columns: %v\n", ds.Headers)
	fmt.Fprintf(w, "Age: %s\n", ds.AgeRange())
	fmt.Fprintf(w, "Num_sick_days: %s\n", ds.SickDaysRange())

	counts := ds.SexCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)

	fmt.Fprintln(w, "Sex labels:")
	for _, label := range labels {
		note := ""
		if s := attendance.Sex(label); s != attendance.SexMale && s != attendance.SexFemale {
			note = " (ignored by the sex comparison)"
		}
		fmt.Fprintf(w, "  %q: %d%s\n", label, counts[attendance.Sex(label)], note)
	}
}
