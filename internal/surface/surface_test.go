// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package surface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/holeviz/pkg/types"
)

const vmdFixture = `draw color red
draw point {1.0 2.0 3.0}
draw color green
draw point {4.0 5.0 6.0}
draw point {7.0 8.0 9.0}
draw color yellow
draw point {0.0 0.0 0.0}
`

// fakeTools stands in for the HOLE binaries, writing fixture output.
type fakeTools struct {
	sphErr  error
	qptErr  error
	vmd     string
	calls   []string
	dotden  int
	timeout time.Duration
}

func (f *fakeTools) SphProcess(_ context.Context, sph, qpt string, dotden int) error {
	f.calls = append(f.calls, "sph_process "+filepath.Base(sph)+" "+filepath.Base(qpt))
	f.dotden = dotden
	if f.sphErr != nil {
		return f.sphErr
	}
	return os.WriteFile(qpt, []byte("qpt"), 0o644)
}

func (f *fakeTools) QptToVMD(_ context.Context, qpt, vmd string, timeout time.Duration) error {
	f.calls = append(f.calls, "qpt_conv "+filepath.Base(qpt)+" "+filepath.Base(vmd))
	f.timeout = timeout
	if f.qptErr != nil {
		return f.qptErr
	}
	return os.WriteFile(vmd, []byte(f.vmd), 0o644)
}

func sphLine(serial int, x, y, z, r float64) string {
	return fmt.Sprintf("%-30s%8.3f%8.3f%8.3f%6.3f%6.2f\n", fmt.Sprintf("ATOM  %5d  QSS SPH S-888", serial), x, y, z, r, 0.0)
}

func writeSph(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := sphLine(1, 0, 0, -5, 1.0) + sphLine(2, 0, 0, 0, 3.0) + sphLine(3, 0, 0, 5, 2.0)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestOutputPaths(t *testing.T) {
	out := OutputPaths("/w/gram_out.sph", "")
	assert.Equal(t, Outputs{
		Qpt:     "/w/gram_out_surface.qpt",
		VMD:     "/w/gram_out_surface.vmd_plot",
		PorePDB: "/w/gram_out_pore_surface.pdb",
		Script:  "/w/gram_out_pymol.pml",
	}, out)
	assert.Equal(t, "/o/gram_out_pymol.pml", OutputPaths("/w/gram_out.sph", "/o").Script)
}

func TestRun(t *testing.T) {
	t.Run("full pipeline", func(t *testing.T) {
		dir := t.TempDir()
		sphPath := writeSph(t, dir, "gramicidin_analysis.sph")
		protein := filepath.Join(dir, "gramicidin.pdb")
		require.NoError(t, os.WriteFile(protein, []byte("ATOM\n"), 0o644))

		tools := &fakeTools{vmd: vmdFixture}
		var buf bytes.Buffer
		cfg := types.SurfaceConfig{SphPath: sphPath, Dotden: 15, Timeout: time.Minute}
		res := Run(context.Background(), cfg, tools, &buf)

		require.True(t, res.OK, "err: %v\n%s", res.Err, buf.String())
		assert.Equal(t, StageDone, res.Stage)
		assert.Equal(t, 4, res.Points)
		assert.Equal(t, protein, res.ProteinPDB)
		assert.Equal(t, 15, tools.dotden)
		assert.Equal(t, time.Minute, tools.timeout)
		assert.Equal(t, []string{
			"sph_process gramicidin_analysis.sph gramicidin_analysis_surface.qpt",
			"qpt_conv gramicidin_analysis_surface.qpt gramicidin_analysis_surface.vmd_plot",
		}, tools.calls)

		pdb, err := os.ReadFile(res.PorePDB)
		require.NoError(t, err)
		assert.Contains(t, string(pdb), " POG P   2")

		script, err := os.ReadFile(res.Script)
		require.NoError(t, err)
		assert.Contains(t, string(script), "range 1.00 - 3.00 A")
		assert.Contains(t, string(script), "color red, resn POR")

		require.Len(t, res.Distribution, 3)
		assert.Equal(t, 2, res.Distribution[1].Count)
		assert.Contains(t, buf.String(), "green   :     2 ( 50.0%)")
	})

	t.Run("no protein skips script", func(t *testing.T) {
		dir := t.TempDir()
		sphPath := writeSph(t, dir, "lonely.sph")
		var buf bytes.Buffer
		res := Run(context.Background(), types.SurfaceConfig{SphPath: sphPath, Dotden: 10, Timeout: time.Second}, &fakeTools{vmd: vmdFixture}, &buf)
		require.True(t, res.OK)
		assert.Empty(t, res.Script)
		assert.FileExists(t, res.PorePDB)
		assert.Contains(t, buf.String(), "Warning: no protein PDB")
	})

	t.Run("output dir override", func(t *testing.T) {
		dir := t.TempDir()
		outDir := filepath.Join(dir, "out")
		sphPath := writeSph(t, dir, "x.sph")
		cfg := types.SurfaceConfig{SphPath: sphPath, OutputDir: outDir, ProteinPDB: filepath.Join(dir, "given.pdb"), Dotden: 15, Timeout: time.Second}
		res := Run(context.Background(), cfg, &fakeTools{vmd: vmdFixture}, &bytes.Buffer{})
		require.True(t, res.OK, "%v", res.Err)
		assert.Equal(t, filepath.Join(outDir, "x_pore_surface.pdb"), res.PorePDB)
		assert.Equal(t, filepath.Join(outDir, "x_pymol.pml"), res.Script)
	})

	failures := []struct {
		name  string
		tools *fakeTools
		stage string
	}{
		{"sph_process fails", &fakeTools{sphErr: errors.New("exit status 1")}, StageSph},
		{"qpt_conv fails", &fakeTools{qptErr: errors.New("timed out")}, StageQptConv},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			sphPath := writeSph(t, dir, "p.sph")
			var buf bytes.Buffer
			res := Run(context.Background(), types.SurfaceConfig{SphPath: sphPath, Dotden: 15, Timeout: time.Second}, tt.tools, &buf)
			assert.False(t, res.OK)
			assert.Equal(t, tt.stage, res.Stage)
			assert.Error(t, res.Err)
			assert.Contains(t, buf.String(), "Error: "+tt.stage+" failed")
			assert.NoFileExists(t, filepath.Join(dir, "p_pore_surface.pdb"))
		})
	}

	t.Run("missing sph", func(t *testing.T) {
		tools := &fakeTools{}
		res := Run(context.Background(), types.SurfaceConfig{SphPath: filepath.Join(t.TempDir(), "nope.sph")}, tools, &bytes.Buffer{})
		assert.False(t, res.OK)
		assert.Equal(t, StageInput, res.Stage)
		assert.ErrorIs(t, res.Err, os.ErrNotExist)
		assert.Empty(t, tools.calls)
	})
}

func TestFindProteinPDB(t *testing.T) {
	tests := []struct {
		name  string
		sph   string
		files []string
		want  string
	}{
		{"same stem", "abc.sph", []string{"abc.pdb", "other.pdb"}, "abc.pdb"},
		{"suffix stripped", "abc_test.sph", []string{"abc.pdb", "aaa.pdb"}, "abc.pdb"},
		{"first pdb fallback", "run.sph", []string{"run_pore_surface.pdb", "zeta.pdb", "beta.pdb"}, "beta.pdb"},
		{"only pore surfaces", "run.sph", []string{"run_pore_surface.pdb"}, ""},
		{"nothing", "run.sph", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
			}
			got := FindProteinPDB(filepath.Join(dir, tt.sph))
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestCylinderPoints(t *testing.T) {
	centres := []types.SurfacePoint{
		{X: 0, Y: 0, Z: 0, Radius: 1.0},
		{X: 1, Y: 1, Z: 2, Radius: 3.0},
	}
	pts := CylinderPoints(centres, 4)
	require.Len(t, pts, 8)

	// Mid radius is 2.0, which is green.
	for _, p := range pts {
		assert.Equal(t, types.TierGreen, p.Tier)
	}
	assert.InDelta(t, 2.0, pts[0].X, 1e-9)
	assert.InDelta(t, 0.0, pts[0].Y, 1e-9)
	assert.InDelta(t, 2.0, pts[1].Y, 1e-9)
	assert.InDelta(t, 2.0, pts[5].Z, 1e-9)
	for _, p := range pts[4:] {
		assert.InDelta(t, 2.0, math.Hypot(p.X-1, p.Y-1), 1e-9)
	}

	assert.Nil(t, CylinderPoints(nil, 4))
	assert.Len(t, CylinderPoints(centres[:1], 0), DefaultPerSlice)
	assert.Equal(t, types.TierRed, CylinderPoints(centres[:1], 1)[0].Tier)
}
