// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/holeviz/pkg/types"
)

// ListOptions filters Profiles.
type ListOptions struct {
	// NarrowerThan keeps profiles whose minimum radius is below this value.
	// Zero disables the filter.
	NarrowerThan float64

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// Summary is one stored profile without its records.
type Summary struct {
	Name   string             `json:"name" yaml:"name"`
	Source string             `json:"source" yaml:"source"`
	Stats  types.ProfileStats `json:"stats" yaml:"stats"`
}

// Profiles lists stored profiles ordered by name.
func (s *Store) Profiles(ctx context.Context, opts ListOptions) ([]Summary, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT name, source, record_count, sampled, mid_points,
			COALESCE(min_radius, 0), COALESCE(min_position, 0),
			COALESCE(max_radius, 0), COALESCE(mean_radius, 0)
		FROM profiles WHERE 1=1`)
	if opts.NarrowerThan > 0 {
		qb.WriteString(` AND record_count > 0 AND min_radius < ?`)
		args = append(args, opts.NarrowerThan)
	}
	qb.WriteString(` ORDER BY name`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		st := &sm.Stats
		if err := rows.Scan(&sm.Name, &sm.Source, &st.Count, &st.Sampled, &st.MidPoints,
			&st.MinRadius, &st.MinPosition, &st.MaxRadius, &st.MeanRadius); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Profile reloads the named profile with its records in position order.
func (s *Store) Profile(ctx context.Context, name string) (types.Profile, error) {
	var source string
	err := s.db.QueryRowContext(ctx, `SELECT source FROM profiles WHERE name = ?`, name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("querying profile %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, radius, cen_line_d, sum_s_area, kind
		FROM records WHERE profile = ? ORDER BY seq`, name)
	if err != nil {
		return types.Profile{}, fmt.Errorf("querying records for %s: %w", name, err)
	}
	defer rows.Close()

	p := types.Profile{Source: source, Records: []types.ProfileRecord{}}
	for rows.Next() {
		var (
			r    types.ProfileRecord
			kind string
		)
		if err := rows.Scan(&r.Position, &r.Radius, &r.CenLineD, &r.SumSArea, &kind); err != nil {
			return types.Profile{}, fmt.Errorf("scanning record: %w", err)
		}
		r.Kind = types.RecordKind(kind)
		p.Records = append(p.Records, r)
	}
	if err := rows.Err(); err != nil {
		return types.Profile{}, err
	}
	return p, nil
}
