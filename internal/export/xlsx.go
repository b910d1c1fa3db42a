// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/holeviz/pkg/types"
)

const (
	summarySheet      = "Summary"
	maxSheetName      = 31
	invalidSheetChars = `[]:*?/\`
)

var summaryHeader = []any{"profile", "records", "sampled", "mid_points", "min_radius", "min_position", "max_radius", "mean_radius"}

// WriteXLSX writes a workbook with a Summary sheet followed by one sheet per
// profile holding the same five columns as the TSV export.
func WriteXLSX(path string, profiles ...types.Profile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, p := range profiles {
		name := uniqueSheetName(sheetName(p, i), used)

		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := writeProfileSheet(f, name, p); err != nil {
			return err
		}

		s := p.Stats()
		row := []any{name, s.Count, s.Sampled, s.MidPoints, s.MinRadius, s.MinPosition, s.MaxRadius, s.MeanRadius}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row for %s: %w", name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}

	slog.Info("wrote workbook",
		slog.String("path", path),
		slog.Int("profile_count", len(profiles)))
	return nil
}

func writeProfileSheet(f *excelize.File, sheet string, p types.Profile) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header on %s: %w", sheet, err)
	}
	for i, r := range p.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Position, r.Radius, r.CenLineD, r.SumSArea, string(r.Kind)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// sheetName derives a worksheet name from the profile source file stem.
func sheetName(p types.Profile, idx int) string {
	name := strings.TrimSuffix(filepath.Base(p.Source), filepath.Ext(p.Source))
	name = strings.TrimSuffix(name, "_out")
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = fmt.Sprintf("profile_%d", idx+1)
	}
	return truncateRunes(name, maxSheetName)
}

// truncateRunes cuts s to at most n characters. Excel limits sheet names by
// character, not byte.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
