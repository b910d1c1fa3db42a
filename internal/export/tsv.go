// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes pore radius profiles as tab-separated text and Excel
// workbooks for spreadsheet use.
package export

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/holeviz/pkg/types"
)

// Columns is the TSV header, in order.
var Columns = []string{"channel_coord", "radius", "cen_line_d", "sum_s_area", "type"}

// WriteTSV writes the header and one row per record. Numbers are written with
// five decimal places.
func WriteTSV(w io.Writer, p types.Profile) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, "\t") + "\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range p.Records {
		if _, err := fmt.Fprintf(bw, "%.5f\t%.5f\t%.5f\t%.5f\t%s\n",
			r.Position, r.Radius, r.CenLineD, r.SumSArea, r.Kind); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// WriteTSVFile writes the profile to path, creating parent directories.
func WriteTSVFile(path string, p types.Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteTSV(f, p); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	slog.Info("wrote TSV",
		slog.String("path", path),
		slog.Int("record_count", p.Len()))
	return nil
}

// TSVRow is one data row read back from a TSV export. Type is the raw tag
// text; it is not validated.
type TSVRow struct {
	Position float64
	Radius   float64
	CenLineD float64
	SumSArea float64
	Type     string
}

// ReadTSV reads a file written by WriteTSV. The header must match Columns.
func ReadTSV(r io.Reader) ([]TSVRow, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("empty TSV input")
	}
	if got := strings.TrimRight(sc.Text(), "\r"); got != strings.Join(Columns, "\t") {
		return nil, fmt.Errorf("unexpected TSV header %q", got)
	}

	var rows []TSVRow
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(Columns) {
			return nil, fmt.Errorf("line %d: want %d fields, got %d", lineNo, len(Columns), len(fields))
		}
		var nums [4]float64
		for i := range nums {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", lineNo, Columns[i], err)
			}
			nums[i] = v
		}
		rows = append(rows, TSVRow{
			Position: nums[0],
			Radius:   nums[1],
			CenLineD: nums[2],
			SumSArea: nums[3],
			Type:     fields[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading TSV: %w", err)
	}
	return rows, nil
}

// DefaultTSVPath derives the TSV path from a report path: "x_out.txt" becomes
// "x.tsv", "x.txt" becomes "x.tsv", anything else gets ".tsv" appended.
func DefaultTSVPath(reportPath string) string {
	switch {
	case strings.HasSuffix(reportPath, "_out.txt"):
		return strings.TrimSuffix(reportPath, "_out.txt") + ".tsv"
	case strings.HasSuffix(reportPath, ".txt"):
		return strings.TrimSuffix(reportPath, ".txt") + ".tsv"
	default:
		return reportPath + ".tsv"
	}
}
