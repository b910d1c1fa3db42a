// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package porepdb

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/holeviz/pkg/types"
)

func TestWrite(t *testing.T) {
	points := []types.ColoredPoint{
		{X: 1, Y: -2.5, Z: 10.125, Tier: types.TierRed},
		{X: 0, Y: 0, Z: 0, Tier: types.TierYellow},
		{X: 3, Y: 3, Z: 3, Tier: types.TierUnknown},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, points))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, "REMARK   Generated by holeviz", lines[0])
	assert.Contains(t, lines, "REMARK     GREEN  - radius 1.15-2.30 A (single water)")
	assert.Equal(t, "END", lines[len(lines)-1])

	var atoms []string
	for _, l := range lines {
		if strings.HasPrefix(l, "ATOM") {
			atoms = append(atoms, l)
		}
	}
	require.Len(t, atoms, 3)
	assert.Equal(t, "ATOM      1 10PS POR P   1       1.000  -2.500  10.125  0.00  0.00      PSDOPS  ", atoms[0])
	assert.Equal(t, "CEN", atoms[1][17:20])
	assert.Equal(t, "UNK", atoms[2][17:20])
	assert.Equal(t, "   3", atoms[2][22:26])
	// PDB fixed columns for coordinates.
	assert.Equal(t, "   1.000", atoms[0][30:38])
	assert.Equal(t, "  10.125", atoms[0][46:54])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.NotContains(t, buf.String(), "ATOM")
	assert.True(t, strings.HasSuffix(buf.String(), "END\n"))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "p_pore_surface.pdb")
	require.NoError(t, WriteFile(path, []types.ColoredPoint{{Tier: types.TierBlue}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), " POB P   1")
}

func TestDistribution(t *testing.T) {
	points := []types.ColoredPoint{
		{Tier: types.TierBlue}, {Tier: types.TierRed}, {Tier: types.TierBlue},
		{Tier: types.TierUnknown},
	}
	dist := Distribution(points)
	require.Len(t, dist, 3)
	assert.Equal(t, TierCount{Tier: types.TierRed, Count: 1, Percent: 25}, dist[0])
	assert.Equal(t, TierCount{Tier: types.TierBlue, Count: 2, Percent: 50}, dist[1])
	assert.Equal(t, types.TierUnknown, dist[2].Tier)

	assert.Nil(t, Distribution(nil))

	var buf bytes.Buffer
	PrintDistribution(&buf, dist)
	assert.Equal(t, "  red     :     1 ( 25.0%)\n  blue    :     2 ( 50.0%)\n  unknown :     1 ( 25.0%)\n", buf.String())
}
