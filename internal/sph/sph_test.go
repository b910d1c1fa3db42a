// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/holeviz/pkg/types"
)

// atomLine builds an ATOM record with the fields at their fixed columns.
func atomLine(serial int, x, y, z, r float64) string {
	prefix := fmt.Sprintf("ATOM  %5d  QSS SPH S-888", serial)
	return fmt.Sprintf("%-30s%8.3f%8.3f%8.3f%6.3f%6.2f", prefix, x, y, z, r, 0.0)
}

func TestAtomLineLayout(t *testing.T) {
	line := atomLine(1, 10, 5, 0, 1.2)
	assert.Equal(t, "  10.000", line[30:38])
	assert.Equal(t, "   5.000", line[38:46])
	assert.Equal(t, "   0.000", line[46:54])
	assert.Equal(t, " 1.200", line[54:60])
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    types.SurfacePoint
		wantErr error
	}{
		{
			name: "fixed columns",
			line: "ATOM      1  QSS SPH S-888    " + "  10.000" + "   5.000" + "   0.000" + " 1.200" + "  0.00",
			want: types.SurfacePoint{X: 10, Y: 5, Z: 0, Radius: 1.2},
		},
		{
			name: "fields run together",
			line: fmt.Sprintf("%-30s%s%s%s%s", "ATOM      2  QSS SPH S-887", "-100.125", "-200.250", "-300.500", "12.345"),
			want: types.SurfacePoint{X: -100.125, Y: -200.25, Z: -300.5, Radius: 12.345},
		},
		{
			name: "trailing carriage return",
			line: atomLine(3, 1, 2, 3, 4) + "\r",
			want: types.SurfacePoint{X: 1, Y: 2, Z: 3, Radius: 4},
		},
		{name: "not atom", line: "REMARK  sphere file", wantErr: ErrNotAtom},
		{name: "hetatm", line: "HETATM" + atomLine(4, 1, 2, 3, 4)[6:], wantErr: ErrNotAtom},
		{name: "short", line: atomLine(5, 1, 2, 3, 4)[:58], wantErr: ErrShortLine},
		{name: "zero radius", line: atomLine(6, 1, 2, 3, 0), wantErr: ErrRadiusRange},
		{name: "radius fifty", line: atomLine(7, 1, 2, 3, 50), wantErr: ErrRadiusRange},
		{name: "negative radius", line: atomLine(8, 1, 2, 3, -1), wantErr: ErrRadiusRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
			assert.InDelta(t, tt.want.Radius, got.Radius, 1e-9)
		})
	}
}

func TestParseLine_FieldError(t *testing.T) {
	line := "ATOM      1  QSS SPH S-888    " + "  10.000" + "   ab.cd" + "   0.000" + " 1.200"
	_, err := ParseLine(line)
	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "y", ferr.Field)
	assert.Equal(t, "ab.cd", ferr.Value)
}

func TestParseLine_HexFloatRejected(t *testing.T) {
	line := "ATOM      1  QSS SPH S-888    " + "  10.000" + "   5.000" + "   0.000" + " 0x1p0"
	_, err := ParseLine(line)
	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "radius", ferr.Field)
	assert.Equal(t, "0x1p0", ferr.Value)

	points, err := Parse(strings.NewReader(line+"\n"+atomLine(2, 1, 2, 3, 1.5)+"\n"), Options{})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 1.5, points[0].Radius, 1e-9)
}

func TestParseLine_RadiusBounds(t *testing.T) {
	tests := []struct {
		r    float64
		keep bool
	}{
		{r: 0, keep: false},
		{r: 0.01, keep: true},
		{r: 49.99, keep: true},
		{r: 50, keep: false},
		{r: 75, keep: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.r), func(t *testing.T) {
			_, err := ParseLine(atomLine(1, 0, 0, 0, tt.r))
			if tt.keep {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrRadiusRange)
			}
		})
	}
}

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"REMARK     8 QSS SPH file",
		atomLine(1, 0, 0, -10, 3.2),
		"ATOM      2  QSS SPH S-887     0.000", // short
		atomLine(3, 0, 0, -9.5, 0),           // zero radius
		"ATOM      4  QSS SPH S-886    " + "   x.000" + "   0.000" + "   0.000" + " 1.000",
		atomLine(5, 0, 0, -9, 1.1),
		"LAST-REC-END",
	}, "\n")

	t.Run("lenient keeps scanning", func(t *testing.T) {
		pts, err := Parse(strings.NewReader(input), Options{})
		require.NoError(t, err)
		require.Len(t, pts, 2)
		assert.InDelta(t, -10, pts[0].Z, 1e-9)
		assert.InDelta(t, 1.1, pts[1].Radius, 1e-9)
	})

	t.Run("strict stops at first malformed atom", func(t *testing.T) {
		_, err := Parse(strings.NewReader(input), Options{Policy: types.PolicyStrict})
		var lerr *LineError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, 3, lerr.Line)
		assert.ErrorIs(t, err, ErrShortLine)
	})

	t.Run("strict still drops out-of-range radii", func(t *testing.T) {
		in := atomLine(1, 0, 0, 0, 0) + "\n" + atomLine(2, 0, 0, 1, 2)
		pts, err := Parse(strings.NewReader(in), Options{Policy: types.PolicyStrict})
		require.NoError(t, err)
		assert.Len(t, pts, 1)
	})

	t.Run("empty input is an empty result", func(t *testing.T) {
		pts, err := Parse(strings.NewReader("REMARK nothing\n"), Options{})
		require.NoError(t, err)
		assert.NotNil(t, pts)
		assert.Empty(t, pts)
	})
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channel.sph")
	content := atomLine(1, 1, 2, 3, 2.5) + "\n" + atomLine(2, 1, 2, 4, 0.9) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pts, err := ParseFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, pts, 2)

	lo, hi, ok := RadiusRange(pts)
	require.True(t, ok)
	assert.InDelta(t, 0.9, lo, 1e-9)
	assert.InDelta(t, 2.5, hi, 1e-9)

	_, err = ParseFile(filepath.Join(dir, "missing.sph"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRadiusRange_Empty(t *testing.T) {
	_, _, ok := RadiusRange(nil)
	assert.False(t, ok)
}
