// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/holeviz/internal/export"
	"github.com/pdiddy/holeviz/internal/plot"
	"github.com/pdiddy/holeviz/internal/report"
	"github.com/pdiddy/holeviz/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile [report]",
	Short: "Parse a HOLE report, print statistics, write TSV and a radius plot",
	Long: `Profile extracts the pore radius profile from a HOLE text report,
prints summary statistics, writes the profile as TSV and renders a radius
against channel coordinate chart as HTML.

Without an argument the configured default reports are tried in order
(input.default_reports). Use --png to also render the chart through headless
Chrome and --xlsx to write an Excel workbook.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

// profileOutputs holds the files a profile run writes. Empty fields are
// skipped.
type profileOutputs struct {
	TSV  string
	HTML string
	PNG  string
	XLSX string
}

func runProfile(cmd *cobra.Command, args []string) error {
	path, err := resolveInput(cmd, args, cfg.Input)
	if err != nil {
		return err
	}

	out := profileOutputs{
		TSV:  outputPath(export.DefaultTSVPath(path)),
		HTML: outputPath(plot.DefaultPlotPath(path, "html")),
	}
	if png, _ := cmd.Flags().GetBool("png"); png || cfg.Plot.PNG {
		out.PNG = outputPath(plot.DefaultPlotPath(path, "png"))
	}
	if xlsx, _ := cmd.Flags().GetString("xlsx"); xlsx != "" {
		out.XLSX = xlsx
	}
	title, _ := cmd.Flags().GetString("title")

	return profileReport(cmd.Context(), cmd.OutOrStdout(), path, title, out)
}

// profileReport runs the profile stages for one report and writes progress
// to w.
func profileReport(ctx context.Context, w io.Writer, path, title string, out profileOutputs) error {
	rule(w)
	fmt.Fprintln(w, "HOLE profile")
	rule(w)
	fmt.Fprintf(w, "\nReport: %s\n\n", path)

	fmt.Fprintln(w, "1. Extracting profile")
	p, err := report.ParseFile(path, report.Options{Policy: cfg.Parse.Policy})
	if err != nil {
		return err
	}
	printStats(w, p.Stats())

	fmt.Fprintln(w, "\n2. Writing TSV")
	if err := export.WriteTSVFile(out.TSV, p); err != nil {
		return err
	}
	fmt.Fprintf(w, "   %s\n", out.TSV)

	fmt.Fprintln(w, "\n3. Rendering chart")
	chart := plot.ProfileChart(p, plotOptions(title))
	html, err := plot.HTMLBytes(chart)
	if err != nil {
		return err
	}
	if err := writeFile(out.HTML, html); err != nil {
		return err
	}
	fmt.Fprintf(w, "   %s\n", out.HTML)

	if out.PNG != "" {
		png, err := plot.RenderPNG(ctx, html, cfg.Plot.Width, cfg.Plot.Height)
		if err != nil {
			return err
		}
		if err := writeFile(out.PNG, png); err != nil {
			return err
		}
		fmt.Fprintf(w, "   %s\n", out.PNG)
	}

	if out.XLSX != "" {
		fmt.Fprintln(w, "\n4. Writing workbook")
		if err := export.WriteXLSX(out.XLSX, p); err != nil {
			return err
		}
		fmt.Fprintf(w, "   %s\n", out.XLSX)
	}

	fmt.Fprintln(w)
	rule(w)
	fmt.Fprintln(w, "Done")
	rule(w)
	fmt.Fprintf(w, "TSV:   %s\n", out.TSV)
	fmt.Fprintf(w, "Chart: %s\n", out.HTML)
	return nil
}

func printStats(w io.Writer, s types.ProfileStats) {
	fmt.Fprintf(w, "   %d data points\n", s.Count)
	fmt.Fprintf(w, "   - sampled:     %d\n", s.Sampled)
	fmt.Fprintf(w, "   - mid-point:   %d\n", s.MidPoints)
	fmt.Fprintf(w, "   - min radius:  %.3f Å (at %.3f Å)\n", s.MinRadius, s.MinPosition)
	fmt.Fprintf(w, "   - max radius:  %.3f Å\n", s.MaxRadius)
	fmt.Fprintf(w, "   - mean radius: %.3f Å\n", s.MeanRadius)
}

func plotOptions(title string) plot.Options {
	return plot.Options{
		Title:            title,
		Width:            cfg.Plot.Width,
		Height:           cfg.Plot.Height,
		ShowPoints:       cfg.Plot.ShowPoints,
		HighlightMinimum: cfg.Plot.HighlightMinimum,
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	profileCmd.Flags().Bool("png", false, "also render the chart to PNG (requires Chrome)")
	profileCmd.Flags().String("xlsx", "", "write the profile to this Excel workbook")
	profileCmd.Flags().String("title", "", "chart title (default: derived from the report name)")

	rootCmd.AddCommand(profileCmd)
}
