// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SurfacePoint is a sphere centre read from a HOLE .sph file: the channel
// centre-line position and the pore radius there.
type SurfacePoint struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Z      float64 `json:"z" yaml:"z"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// Tier buckets a pore radius for coloring. HOLE's standard scheme uses red
// for gaps too narrow for water, green for room for a single water, and blue
// for wider pores. Yellow marks the channel centre line.
type Tier string

const (
	TierUnknown Tier = ""
	TierRed     Tier = "red"
	TierGreen   Tier = "green"
	TierBlue    Tier = "blue"
	TierYellow  Tier = "yellow"
)

// ColoredPoint is a pore surface dot with its tier.
type ColoredPoint struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Z    float64 `json:"z" yaml:"z"`
	Tier Tier    `json:"tier" yaml:"tier"`
}
