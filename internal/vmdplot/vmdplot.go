// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vmdplot reads the VMD drawing commands qpt_conv writes and
// recovers colored surface points.
package vmdplot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/holeviz/internal/tier"
	"github.com/pdiddy/holeviz/pkg/types"
)

var (
	colorRe = regexp.MustCompile(`draw\s+color\s+(\S+)`)
	pointRe = regexp.MustCompile(`draw\s+point\s+\{([\s\d.eE+-]+)\}`)
)

// Parse collects every "draw point {x y z}" coordinate, tagging each with
// the tier named by the most recent recognised "draw color" line. Points
// before any such line get TierUnknown. An unrecognised color, such as a
// numeric color id, leaves the current tier unchanged. Malformed points are
// skipped.
func Parse(r io.Reader) ([]types.ColoredPoint, error) {
	points := []types.ColoredPoint{}
	current := types.TierUnknown

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if m := colorRe.FindStringSubmatch(line); m != nil {
			if t := tier.FromColorName(m[1]); t != types.TierUnknown {
				current = t
			}
		}
		m := pointRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p, ok := parseTriple(m[1])
		if !ok {
			continue
		}
		p.Tier = current
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading VMD plot: %w", err)
	}
	return points, nil
}

func parseTriple(s string) (types.ColoredPoint, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return types.ColoredPoint{}, false
	}
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return types.ColoredPoint{}, false
		}
		xyz[i] = v
	}
	return types.ColoredPoint{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

// ParseFile opens path and parses it.
func ParseFile(path string) ([]types.ColoredPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	points, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return points, nil
}
