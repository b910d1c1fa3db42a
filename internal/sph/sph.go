// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sph reads sphere centres from HOLE .sph files.
//
// A .sph file is PDB-formatted: each ATOM record is one sphere, with the
// centre in the usual coordinate columns and the sphere radius in the
// occupancy columns. Fields are fixed-width and may run together, so they are
// read by column rather than split on whitespace.
package sph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/holeviz/pkg/types"
)

const (
	recordTag = "ATOM"

	// MinRadius and MaxRadius bound the radii kept, both exclusive.
	MinRadius = 0.0
	MaxRadius = 50.0
)

// column is a half-open byte range [start, end) of a fixed-width field.
type column struct {
	name       string
	start, end int
}

var (
	colX      = column{"x", 30, 38}
	colY      = column{"y", 38, 46}
	colZ      = column{"z", 46, 54}
	colRadius = column{"radius", 54, 60}
)

// minLineLen is the shortest line that holds every field.
const minLineLen = 60

var (
	ErrNotAtom     = errors.New("not an ATOM record")
	ErrShortLine   = errors.New("line too short for coordinate columns")
	ErrRadiusRange = errors.New("radius outside (0, 50)")

	errNotDecimal = errors.New("not a decimal number")
)

// FieldError reports a fixed-width field that is not a decimal number.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// LineError wraps a malformed ATOM line under the strict policy.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Options controls parsing.
type Options struct {
	// Policy decides whether a malformed ATOM line stops the scan. The
	// zero value is lenient. Radii outside (0, 50) are dropped under both
	// policies.
	Policy types.ParsePolicy
}

// ParseLine reads one ATOM record.
func ParseLine(line string) (types.SurfacePoint, error) {
	if !strings.HasPrefix(line, recordTag) {
		return types.SurfacePoint{}, ErrNotAtom
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) < minLineLen {
		return types.SurfacePoint{}, ErrShortLine
	}

	var vals [4]float64
	for i, col := range []column{colX, colY, colZ, colRadius} {
		raw := strings.TrimSpace(line[col.start:col.end])
		// ParseFloat also takes hex floats like 0x1p0.
		if strings.ContainsAny(raw, "xX") {
			return types.SurfacePoint{}, &FieldError{Field: col.name, Value: raw, Err: errNotDecimal}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.SurfacePoint{}, &FieldError{Field: col.name, Value: raw, Err: err}
		}
		vals[i] = v
	}

	pt := types.SurfacePoint{X: vals[0], Y: vals[1], Z: vals[2], Radius: vals[3]}
	if !(pt.Radius > MinRadius && pt.Radius < MaxRadius) {
		return pt, ErrRadiusRange
	}
	return pt, nil
}

// Parse scans r line by line and returns the accepted sphere centres in file
// order. A file with no usable records yields an empty slice, not an error.
func Parse(r io.Reader, opts Options) ([]types.SurfacePoint, error) {
	points := []types.SurfacePoint{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		pt, err := ParseLine(sc.Text())
		switch {
		case err == nil:
			points = append(points, pt)
		case errors.Is(err, ErrNotAtom), errors.Is(err, ErrRadiusRange):
			continue
		case opts.Policy == types.PolicyStrict:
			return nil, &LineError{Line: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning sph records: %w", err)
	}
	return points, nil
}

// ParseFile opens and parses the .sph file at path.
func ParseFile(path string, opts Options) ([]types.SurfacePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sph file %s: %w", path, err)
	}
	defer f.Close()

	points, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing sph file %s: %w", path, err)
	}
	return points, nil
}

// RadiusRange returns the smallest and largest radius. ok is false when
// points is empty.
func RadiusRange(points []types.SurfacePoint) (lo, hi float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	lo, hi = points[0].Radius, points[0].Radius
	for _, p := range points[1:] {
		if p.Radius < lo {
			lo = p.Radius
		}
		if p.Radius > hi {
			hi = p.Radius
		}
	}
	return lo, hi, true
}
