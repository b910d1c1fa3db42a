// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps parsed pore radius profiles in a SQLite database so
// runs can be listed, compared and exported without re-reading reports.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/holeviz/internal/report"
	"github.com/pdiddy/holeviz/pkg/types"
)

const dbFile = "profiles.db"

// ErrNotFound is returned when a named profile is not in the store.
var ErrNotFound = errors.New("profile not found")

// Store manages the profile SQLite database.
type Store struct {
	db     *sql.DB
	dir    string
	policy types.ParsePolicy
}

// NewStore opens or creates dir/profiles.db and its schema. policy is used
// when parsing reports during Ingest.
func NewStore(cfg types.StoreConfig, policy types.ParsePolicy) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, policy: policy}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			sampled INTEGER NOT NULL,
			mid_points INTEGER NOT NULL,
			min_radius REAL,
			min_position REAL,
			max_radius REAL,
			mean_radius REAL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			profile TEXT NOT NULL REFERENCES profiles(name) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			position REAL NOT NULL,
			radius REAL NOT NULL,
			cen_line_d REAL NOT NULL,
			sum_s_area REAL NOT NULL,
			kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_profile ON records(profile, seq)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			profile TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of reports processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any report failed to ingest.
func (s IngestSummary) HasFailures() bool { return s.Failed > 0 }

// ProfileName derives the stored name from a report path: the file stem
// without HOLE's "_out" suffix.
func ProfileName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_out")
}

// reportNames assigns a profile name to each report file. When two files
// reduce to the same name, as "a.txt" and "a_out.txt" do, the one that lost
// its "_out" suffix keeps its full stem instead.
func reportNames(reports []os.DirEntry) map[string]string {
	count := make(map[string]int, len(reports))
	for _, e := range reports {
		count[ProfileName(e.Name())]++
	}
	names := make(map[string]string, len(reports))
	for _, e := range reports {
		name := ProfileName(e.Name())
		if stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())); count[name] > 1 && stem != name {
			name = stem
		}
		names[e.Name()] = name
	}
	return names
}

// Ingest parses every .txt report in reportsDir. Reports whose modification
// time is unchanged since the last run are skipped; changed ones replace
// their stored records. A failing report is counted and does not stop the
// run.
func (s *Store) Ingest(ctx context.Context, reportsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading reports directory %s: %w", reportsDir, err)
	}

	var reports []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		reports = append(reports, entry)
	}
	names := reportNames(reports)

	var summary IngestSummary
	claimed := make(map[string]string, len(reports))
	for _, entry := range reports {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := names[entry.Name()]
		if other, ok := claimed[name]; ok {
			fmt.Fprintf(w, "failed  %s: %s and %s both map to this name\n", name, other, entry.Name())
			summary.Failed++
			continue
		}
		claimed[name] = entry.Name()

		path := filepath.Join(reportsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE profile = ?`, name,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		p, err := report.ParseFile(path, report.Options{Policy: s.policy})
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.Put(ctx, name, p, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", name, p.Len())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d records)\n", name, p.Len())
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// Put stores p under name, replacing any previous records. modTime is the
// source file's modification stamp used to skip unchanged reports.
func (s *Store) Put(ctx context.Context, name string, p types.Profile, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE profile = ?`, name); err != nil {
		return fmt.Errorf("deleting old records: %w", err)
	}

	st := p.Stats()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (name, source, record_count, sampled, mid_points, min_radius, min_position, max_radius, mean_radius)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			source=excluded.source, record_count=excluded.record_count,
			sampled=excluded.sampled, mid_points=excluded.mid_points,
			min_radius=excluded.min_radius, min_position=excluded.min_position,
			max_radius=excluded.max_radius, mean_radius=excluded.mean_radius`,
		name, p.Source, st.Count, st.Sampled, st.MidPoints,
		st.MinRadius, st.MinPosition, st.MaxRadius, st.MeanRadius,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (profile, seq, position, radius, cen_line_d, sum_s_area, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range p.Records {
		if _, err := stmt.ExecContext(ctx, name, i, r.Position, r.Radius, r.CenLineD, r.SumSArea, string(r.Kind)); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (profile, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(profile) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		name, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
