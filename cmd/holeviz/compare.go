// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/holeviz/internal/export"
	"github.com/pdiddy/holeviz/internal/plot"
	"github.com/pdiddy/holeviz/internal/report"
	"github.com/pdiddy/holeviz/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare <report>...",
	Short: "Overlay the radius profiles of several HOLE reports",
	Long: `Compare parses each report and draws all profiles on one chart, marking
the narrowest point of each. Series are named after the report files unless
--label is given once per report, in order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	for _, a := range args {
		if !fileExists(a) {
			return missingInput(cmd, []string{a})
		}
	}
	labels, _ := cmd.Flags().GetStringSlice("label")
	if len(labels) > len(args) {
		return fmt.Errorf("%d labels given for %d reports", len(labels), len(args))
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = outputPath("comparison.html")
	}
	xlsx, _ := cmd.Flags().GetString("xlsx")
	title, _ := cmd.Flags().GetString("title")

	return compareReports(cmd.OutOrStdout(), args, labels, title, outPath, xlsx)
}

func compareReports(w io.Writer, paths, labels []string, title, outPath, xlsx string) error {
	profiles := make([]types.Profile, 0, len(paths))
	for _, path := range paths {
		p, err := report.ParseFile(path, report.Options{Policy: cfg.Parse.Policy})
		if err != nil {
			return err
		}
		s := p.Stats()
		fmt.Fprintf(w, "%-30s %4d points, min %.3f Å at %.3f Å\n", plot.Stem(path), s.Count, s.MinRadius, s.MinPosition)
		profiles = append(profiles, p)
	}

	chart := plot.CompareChart(profiles, labels, plotOptions(title))
	html, err := plot.HTMLBytes(chart)
	if err != nil {
		return err
	}
	if err := writeFile(outPath, html); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nComparison chart: %s\n", outPath)

	if xlsx != "" {
		if err := export.WriteXLSX(xlsx, profiles...); err != nil {
			return err
		}
		fmt.Fprintf(w, "Workbook: %s\n", xlsx)
	}
	return nil
}

func init() {
	compareCmd.Flags().StringSlice("label", nil, "series label, once per report in order")
	compareCmd.Flags().String("out", "", "chart path (default: comparison.html)")
	compareCmd.Flags().String("xlsx", "", "also write all profiles to this Excel workbook")
	compareCmd.Flags().String("title", "", "chart title")

	rootCmd.AddCommand(compareCmd)
}
