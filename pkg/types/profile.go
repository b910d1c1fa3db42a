// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the holeviz stages: pore radius
// profiles parsed from HOLE reports, sphere-centre points read from .sph files,
// colored surface dots, and the configuration structs for each stage.
package types

import "math"

// RecordKind tells which kind of HOLE output line produced a ProfileRecord.
type RecordKind string

const (
	// KindSampled marks a point HOLE recorded at an explicit scan step.
	KindSampled RecordKind = "sampled"
	// KindMidPoint marks a point HOLE inserted between scan steps.
	KindMidPoint RecordKind = "mid-point"
)

// Valid reports whether k is one of the two known record kinds.
func (k RecordKind) Valid() bool {
	return k == KindSampled || k == KindMidPoint
}

// ProfileRecord is one line of a HOLE pore radius profile.
type ProfileRecord struct {
	// Position is the channel coordinate (cenxyz.cvec), the signed distance
	// along the channel vector.
	Position float64 `json:"channel_coord" yaml:"channel_coord"`

	// Radius is the pore radius at Position.
	Radius float64 `json:"radius" yaml:"radius"`

	// CenLineD is the cumulative distance along the centre line.
	CenLineD float64 `json:"cen_line_d" yaml:"cen_line_d"`

	// SumSArea is HOLE's running sum{s/area} column.
	SumSArea float64 `json:"sum_s_area" yaml:"sum_s_area"`

	// Kind is the tag that closed the line: sampled or mid-point.
	Kind RecordKind `json:"type" yaml:"type"`
}

// Profile is an ordered pore radius profile, sorted ascending by Position.
type Profile struct {
	// Source names where the profile came from (usually the report path).
	Source string `json:"source" yaml:"source"`

	// Records holds the profile points in channel-coordinate order.
	Records []ProfileRecord `json:"records" yaml:"records"`
}

// Len returns the number of records in the profile.
func (p Profile) Len() int { return len(p.Records) }

// Sampled returns the sampled records in profile order.
func (p Profile) Sampled() []ProfileRecord { return p.byKind(KindSampled) }

// MidPoints returns the mid-point records in profile order.
func (p Profile) MidPoints() []ProfileRecord { return p.byKind(KindMidPoint) }

func (p Profile) byKind(k RecordKind) []ProfileRecord {
	var out []ProfileRecord
	for _, r := range p.Records {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// Positions returns the channel coordinates of every record.
func (p Profile) Positions() []float64 {
	out := make([]float64, len(p.Records))
	for i, r := range p.Records {
		out[i] = r.Position
	}
	return out
}

// Radii returns the radius of every record.
func (p Profile) Radii() []float64 {
	out := make([]float64, len(p.Records))
	for i, r := range p.Records {
		out[i] = r.Radius
	}
	return out
}

// Minimum returns the record with the smallest radius. On ties the record
// nearest the start of the profile wins. ok is false for an empty profile.
func (p Profile) Minimum() (rec ProfileRecord, ok bool) {
	if len(p.Records) == 0 {
		return ProfileRecord{}, false
	}
	rec = p.Records[0]
	for _, r := range p.Records[1:] {
		if r.Radius < rec.Radius {
			rec = r
		}
	}
	return rec, true
}

// ProfileStats summarises a profile.
type ProfileStats struct {
	Count      int     `json:"count" yaml:"count"`
	Sampled    int     `json:"sampled" yaml:"sampled"`
	MidPoints  int     `json:"mid_points" yaml:"mid_points"`
	MinRadius  float64 `json:"min_radius" yaml:"min_radius"`
	MaxRadius  float64 `json:"max_radius" yaml:"max_radius"`
	MeanRadius float64 `json:"mean_radius" yaml:"mean_radius"`
	// MinPosition is the channel coordinate of the narrowest point.
	MinPosition float64 `json:"min_position" yaml:"min_position"`
}

// Stats computes summary statistics. The radius fields are zero for an
// empty profile.
func (p Profile) Stats() ProfileStats {
	s := ProfileStats{Count: len(p.Records)}
	if s.Count == 0 {
		return s
	}
	s.MinRadius = math.Inf(1)
	s.MaxRadius = math.Inf(-1)
	var sum float64
	for _, r := range p.Records {
		switch r.Kind {
		case KindSampled:
			s.Sampled++
		case KindMidPoint:
			s.MidPoints++
		}
		if r.Radius < s.MinRadius {
			s.MinRadius = r.Radius
			s.MinPosition = r.Position
		}
		if r.Radius > s.MaxRadius {
			s.MaxRadius = r.Radius
		}
		sum += r.Radius
	}
	s.MeanRadius = sum / float64(s.Count)
	return s
}
