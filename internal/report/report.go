// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report extracts pore radius profiles from HOLE text output.
//
// HOLE writes one line per profile point after the "cenxyz.cvec" header:
//
//	cenxyz.cvec  radius  cen_line_D  sum{s/area}
//	  -10.50000  3.21410  -10.21290    0.34215 (sampled)
//	  -10.25000  3.10022  -9.96290     0.42261 (mid-point)
//
// The parser matches on line content alone, so it also works on reports
// whose header was lost or reworded.
package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/holeviz/pkg/types"
)

// HeaderMarker is the column header HOLE prints before the profile data.
const HeaderMarker = "cenxyz.cvec"

// ErrNoData is returned when a report contains no profile lines at all.
var ErrNoData = errors.New("no profile data found")

var (
	recordRe = regexp.MustCompile(`^\s*(-?\d+\.\d+)\s+(-?\d+\.\d+)\s+(-?\d+\.\d+)\s+(-?\d+\.\d+)\s+\((sampled|mid-point)\)`)
	tagRe    = regexp.MustCompile(`\((sampled|mid-point)\)`)
)

// Options controls parsing.
type Options struct {
	// Policy decides what happens to a tagged line that does not have the
	// four-number shape. The zero value is lenient.
	Policy types.ParsePolicy
}

// LineError reports a malformed profile line under the strict policy.
type LineError struct {
	Line int
	Text string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: malformed profile record %q", e.Line, e.Text)
}

// Parse builds a profile from report text. Sampled and mid-point records are
// collected separately in file order, concatenated (sampled first) and then
// stable-sorted by channel coordinate, so at equal positions a sampled record
// always precedes a mid-point record.
func Parse(text string, opts Options) (types.Profile, error) {
	var sampled, mid []types.ProfileRecord

	for i, line := range strings.Split(text, "\n") {
		m := recordRe.FindStringSubmatch(line)
		if m == nil {
			if opts.Policy == types.PolicyStrict && tagRe.MatchString(line) {
				return types.Profile{}, &LineError{Line: i + 1, Text: strings.TrimRight(line, "\r")}
			}
			continue
		}

		rec, err := newRecord(m)
		if err != nil {
			// The regexp only admits fixed-point numbers, so this is
			// unreachable short of overflow.
			if opts.Policy == types.PolicyStrict {
				return types.Profile{}, &LineError{Line: i + 1, Text: strings.TrimRight(line, "\r")}
			}
			continue
		}

		if rec.Kind == types.KindSampled {
			sampled = append(sampled, rec)
		} else {
			mid = append(mid, rec)
		}
	}

	all := make([]types.ProfileRecord, 0, len(sampled)+len(mid))
	all = append(all, sampled...)
	all = append(all, mid...)
	if len(all) == 0 {
		return types.Profile{}, ErrNoData
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Position < all[j].Position
	})

	return types.Profile{Records: all}, nil
}

func newRecord(m []string) (types.ProfileRecord, error) {
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return types.ProfileRecord{}, err
		}
		vals[i] = v
	}
	return types.ProfileRecord{
		Position: vals[0],
		Radius:   vals[1],
		CenLineD: vals[2],
		SumSArea: vals[3],
		Kind:     types.RecordKind(m[5]),
	}, nil
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, opts Options) (types.Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.Profile{}, fmt.Errorf("reading report: %w", err)
	}
	return Parse(string(data), opts)
}

// ParseFile reads and parses the report at path. The returned profile's
// Source is set to path.
func ParseFile(path string, opts Options) (types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Profile{}, fmt.Errorf("reading report %s: %w", path, err)
	}
	text := string(data)

	if !strings.Contains(text, HeaderMarker) {
		slog.Warn("report header not found, scanning whole file",
			slog.String("path", path),
			slog.String("marker", HeaderMarker))
	}

	p, err := Parse(text, opts)
	if err != nil {
		return types.Profile{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	p.Source = path

	slog.Debug("parsed report",
		slog.String("path", path),
		slog.Int("records", p.Len()))
	return p, nil
}
