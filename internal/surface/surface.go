// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package surface runs the pore surface pipeline: HOLE sphere file to dot
// surface, VMD plot text, colored pore PDB and a PyMOL script.
package surface

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/holeviz/internal/porepdb"
	"github.com/pdiddy/holeviz/internal/pymol"
	"github.com/pdiddy/holeviz/internal/sph"
	"github.com/pdiddy/holeviz/internal/tier"
	"github.com/pdiddy/holeviz/internal/vmdplot"
	"github.com/pdiddy/holeviz/pkg/types"
)

// Pipeline stage names reported in Result.Stage.
const (
	StageInput   = "input"
	StageSph     = "sph_process"
	StageQptConv = "qpt_conv"
	StageParse   = "parse"
	StagePorePDB = "pore_pdb"
	StagePymol   = "pymol"
	StageDone    = "done"
)

// Tools runs the external HOLE helpers.
type Tools interface {
	SphProcess(ctx context.Context, sph, qpt string, dotden int) error
	QptToVMD(ctx context.Context, qpt, vmd string, timeout time.Duration) error
}

// Outputs are the files the pipeline writes for one .sph input.
type Outputs struct {
	Qpt     string
	VMD     string
	PorePDB string
	Script  string
}

// OutputPaths derives the output file names from the .sph path. An empty
// dir places them beside the input.
func OutputPaths(sphPath, dir string) Outputs {
	if dir == "" {
		dir = filepath.Dir(sphPath)
	}
	stem := strings.TrimSuffix(filepath.Base(sphPath), filepath.Ext(sphPath))
	join := func(suffix string) string { return filepath.Join(dir, stem+suffix) }
	return Outputs{
		Qpt:     join("_surface.qpt"),
		VMD:     join("_surface.vmd_plot"),
		PorePDB: join("_pore_surface.pdb"),
		Script:  join("_pymol.pml"),
	}
}

// Result summarises a pipeline run. When OK is false, Stage names the step
// that failed and Err holds the cause.
type Result struct {
	OK           bool
	Stage        string
	Err          error
	PorePDB      string
	Script       string
	ProteinPDB   string
	Points       int
	Colored      []types.ColoredPoint
	Distribution []porepdb.TierCount
}

// Run executes the pipeline and writes progress to w. Failures are reported
// in the Result rather than returned.
func Run(ctx context.Context, cfg types.SurfaceConfig, tools Tools, w io.Writer) Result {
	res := Result{Stage: StageInput}
	fail := func(stage string, err error) Result {
		res.Stage = stage
		res.Err = err
		fmt.Fprintf(w, "Error: %s failed: %v\n", stage, err)
		return res
	}

	if _, err := os.Stat(cfg.SphPath); err != nil {
		return fail(StageInput, fmt.Errorf("sphere file: %w", err))
	}
	out := OutputPaths(cfg.SphPath, cfg.OutputDir)
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fail(StageInput, fmt.Errorf("creating output directory: %w", err))
		}
	}

	fmt.Fprintf(w, "1. sph_process (surface dots, dotden %d)\n", cfg.Dotden)
	if err := tools.SphProcess(ctx, cfg.SphPath, out.Qpt, cfg.Dotden); err != nil {
		return fail(StageSph, err)
	}

	fmt.Fprintf(w, "2. qpt_conv (qpt to VMD)\n")
	if err := tools.QptToVMD(ctx, out.Qpt, out.VMD, cfg.Timeout); err != nil {
		return fail(StageQptConv, err)
	}

	fmt.Fprintf(w, "3. parse VMD plot\n")
	points, err := vmdplot.ParseFile(out.VMD)
	if err != nil {
		return fail(StageParse, err)
	}
	res.Colored = points
	res.Points = len(points)
	fmt.Fprintf(w, "   %d surface points\n", len(points))

	fmt.Fprintf(w, "4. write pore PDB\n")
	if err := porepdb.WriteFile(out.PorePDB, points); err != nil {
		return fail(StagePorePDB, err)
	}
	res.PorePDB = out.PorePDB
	res.Distribution = porepdb.Distribution(points)
	fmt.Fprintf(w, "   %s (%d atoms)\n", out.PorePDB, len(points))
	porepdb.PrintDistribution(w, res.Distribution)

	fmt.Fprintf(w, "5. PyMOL script\n")
	protein := cfg.ProteinPDB
	if protein == "" {
		protein = FindProteinPDB(cfg.SphPath)
	}
	if protein == "" {
		fmt.Fprintf(w, "Warning: no protein PDB found beside %s, skipping PyMOL script\n", cfg.SphPath)
		res.OK = true
		res.Stage = StageDone
		return res
	}
	res.ProteinPDB = protein

	script := pymol.SurfaceScript{ProteinPDB: protein, PorePDB: out.PorePDB, Radius: radiusRange(cfg.SphPath)}
	err = pymol.WriteFile(out.Script, func(w io.Writer) error {
		return pymol.WriteSurfaceScript(w, script)
	})
	if err != nil {
		return fail(StagePymol, err)
	}
	res.Script = out.Script
	fmt.Fprintf(w, "   %s\n", out.Script)

	res.OK = true
	res.Stage = StageDone
	return res
}

// radiusRange reads the sphere radii for tier coloring; nil when the file
// has no usable records.
func radiusRange(sphPath string) *pymol.RadiusRange {
	points, err := sph.ParseFile(sphPath, sph.Options{})
	if err != nil {
		return nil
	}
	lo, hi, ok := sph.RadiusRange(points)
	if !ok {
		return nil
	}
	return &pymol.RadiusRange{Min: lo, Max: hi}
}

var strippedSuffixes = []string{"_analysis", "_test", "_out"}

// FindProteinPDB looks beside the .sph file for the protein structure: the
// same stem, then the stem with an analysis suffix removed, then the first
// .pdb that is not a pore surface. It returns "" when nothing matches.
func FindProteinPDB(sphPath string) string {
	dir := filepath.Dir(sphPath)
	stem := strings.TrimSuffix(filepath.Base(sphPath), filepath.Ext(sphPath))

	candidates := []string{filepath.Join(dir, stem+".pdb")}
	for _, s := range strippedSuffixes {
		if strings.Contains(stem, s) {
			candidates = append(candidates, filepath.Join(dir, strings.ReplaceAll(stem, s, "")+".pdb"))
		}
	}
	for _, c := range candidates {
		if isFile(c) {
			return c
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.pdb"))
	if err != nil {
		return ""
	}
	for _, m := range matches {
		if !strings.Contains(filepath.Base(m), "pore_surface") && isFile(m) {
			return m
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DefaultPerSlice is the number of points placed around each centre.
const DefaultPerSlice = 20

// CylinderPoints builds a uniform cylinder around the channel centre line at
// the midpoint of the smallest and largest radius. Every point takes the
// tier of that mid radius. Circles lie in the XY plane.
func CylinderPoints(points []types.SurfacePoint, perSlice int) []types.ColoredPoint {
	lo, hi, ok := sph.RadiusRange(points)
	if !ok {
		return nil
	}
	if perSlice <= 0 {
		perSlice = DefaultPerSlice
	}
	mid := (lo + hi) / 2
	t := tier.Classify(mid)

	out := make([]types.ColoredPoint, 0, len(points)*perSlice)
	for _, c := range points {
		for i := 0; i < perSlice; i++ {
			angle := 2 * math.Pi * float64(i) / float64(perSlice)
			out = append(out, types.ColoredPoint{
				X:    c.X + mid*math.Cos(angle),
				Y:    c.Y + mid*math.Sin(angle),
				Z:    c.Z,
				Tier: t,
			})
		}
	}
	return out
}
