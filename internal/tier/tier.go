// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tier classifies pore radii into HOLE's standard color bands. Every
// output path (pore PDB residue names, PyMOL coloring, cylinder dots) goes
// through Classify so the boundaries live in one place.
package tier

import (
	"fmt"
	"strings"

	"github.com/pdiddy/holeviz/pkg/types"
)

const (
	// NarrowBelow is the radius under which a pore is too narrow for water.
	NarrowBelow = 1.15
	// SingleWaterMax is the largest radius that still only fits one water.
	SingleWaterMax = 2.30
)

// Classify buckets a radius: below 1.15 is red, 1.15 through 2.30 is green,
// above 2.30 is blue.
func Classify(radius float64) types.Tier {
	switch {
	case radius > SingleWaterMax:
		return types.TierBlue
	case radius >= NarrowBelow:
		return types.TierGreen
	default:
		return types.TierRed
	}
}

type info struct {
	residue string
	color   string
	label   string
	bounds  string
}

var tiers = map[types.Tier]info{
	types.TierRed:    {"POR", "red", "too narrow", fmt.Sprintf("< %.2f A", NarrowBelow)},
	types.TierGreen:  {"POG", "green", "single water", fmt.Sprintf("%.2f-%.2f A", NarrowBelow, SingleWaterMax)},
	types.TierBlue:   {"POB", "blue", "multiple waters", fmt.Sprintf("> %.2f A", SingleWaterMax)},
	types.TierYellow: {"CEN", "yellow", "channel center line", ""},
}

// Order lists the tiers in legend order.
var Order = []types.Tier{types.TierRed, types.TierGreen, types.TierBlue, types.TierYellow}

// ResidueName returns the PDB residue name used for points of tier t, or
// "UNK" for an unknown tier.
func ResidueName(t types.Tier) string {
	if in, ok := tiers[t]; ok {
		return in.residue
	}
	return "UNK"
}

// Color returns the PyMOL color name for tier t, or "gray" for an unknown
// tier.
func Color(t types.Tier) string {
	if in, ok := tiers[t]; ok {
		return in.color
	}
	return "gray"
}

// FromColorName maps a color word (as written by qpt_conv's VMD output) to a
// tier. Unrecognised names give TierUnknown.
func FromColorName(name string) types.Tier {
	t := types.Tier(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := tiers[t]; ok {
		return t
	}
	return types.TierUnknown
}

// LegendEntry describes one tier for REMARK lines and script printouts.
type LegendEntry struct {
	Tier    types.Tier
	Residue string
	Label   string
	Bounds  string
}

// String renders the entry as "RED    - radius < 1.15 A (too narrow)".
func (e LegendEntry) String() string {
	name := strings.ToUpper(string(e.Tier))
	if e.Bounds == "" {
		return fmt.Sprintf("%-6s - %s", name, e.Label)
	}
	return fmt.Sprintf("%-6s - radius %s (%s)", name, e.Bounds, e.Label)
}

// Legend returns the tier descriptions in Order.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(Order))
	for _, t := range Order {
		in := tiers[t]
		out = append(out, LegendEntry{Tier: t, Residue: in.residue, Label: in.label, Bounds: in.bounds})
	}
	return out
}
