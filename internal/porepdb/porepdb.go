// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package porepdb writes colored pore surface points as a PDB file, one
// independent atom per point with the tier encoded in the residue name.
package porepdb

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/holeviz/internal/tier"
	"github.com/pdiddy/holeviz/pkg/types"
)

const (
	atomName = "10PS"
	chainID  = "P"
	segment  = "PSDOPS"
)

var remarks = []string{
	"Generated by holeviz",
	"Using HOLE sph_process",
	"All atoms are independent (no CONECT records)",
	"Color scheme (HOLE standard):",
}

// Write emits the REMARK header, one ATOM record per point and END. Serial
// and residue numbers both count from 1.
func Write(w io.Writer, points []types.ColoredPoint) error {
	bw := bufio.NewWriter(w)
	for _, r := range remarks {
		fmt.Fprintf(bw, "REMARK   %s\n", r)
	}
	for _, e := range tier.Legend() {
		fmt.Fprintf(bw, "REMARK     %s\n", e)
	}
	for i, p := range points {
		n := i + 1
		fmt.Fprintf(bw, "ATOM  %5d %s %s %s%4d    %8.3f%8.3f%8.3f  0.00  0.00      %s  \n",
			n, atomName, tier.ResidueName(p.Tier), chainID, n, p.X, p.Y, p.Z, segment)
	}
	bw.WriteString("END\n")
	return bw.Flush()
}

// WriteFile writes points to path, creating parent directories.
func WriteFile(path string, points []types.ColoredPoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, points); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Info("wrote pore PDB",
		slog.String("path", path),
		slog.Int("atom_count", len(points)))
	return nil
}

// TierCount is one row of a color distribution.
type TierCount struct {
	Tier    types.Tier
	Count   int
	Percent float64
}

// Distribution counts points per tier in legend order. Tiers with no points
// are omitted; unknown-tier points are counted last when present.
func Distribution(points []types.ColoredPoint) []TierCount {
	if len(points) == 0 {
		return nil
	}
	counts := make(map[types.Tier]int)
	for _, p := range points {
		counts[p.Tier]++
	}
	order := append(append([]types.Tier{}, tier.Order...), types.TierUnknown)

	var out []TierCount
	for _, t := range order {
		c := counts[t]
		if c == 0 {
			continue
		}
		out = append(out, TierCount{
			Tier:    t,
			Count:   c,
			Percent: float64(c) / float64(len(points)) * 100,
		})
	}
	return out
}

// PrintDistribution writes the distribution as aligned text rows.
func PrintDistribution(w io.Writer, dist []TierCount) {
	for _, d := range dist {
		name := string(d.Tier)
		if d.Tier == types.TierUnknown {
			name = "unknown"
		}
		fmt.Fprintf(w, "  %-8s: %5d (%5.1f%%)\n", name, d.Count, d.Percent)
	}
}
