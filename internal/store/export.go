// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/holeviz/pkg/types"
)

// ExportEntry is one profile with its summary statistics.
type ExportEntry struct {
	Name    string                `json:"name" yaml:"name"`
	Source  string                `json:"source" yaml:"source"`
	Stats   types.ProfileStats    `json:"stats" yaml:"stats"`
	Records []types.ProfileRecord `json:"records" yaml:"records"`
}

// ExportYAML writes every stored profile to <dir>/export.yaml and returns
// the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every stored profile to <dir>/export.json and returns
// the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	summaries, err := s.Profiles(ctx, ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(summaries))
	for _, sm := range summaries {
		p, err := s.Profile(ctx, sm.Name)
		if err != nil {
			return nil, fmt.Errorf("loading %s for export: %w", sm.Name, err)
		}
		entries = append(entries, ExportEntry{
			Name:    sm.Name,
			Source:  sm.Source,
			Stats:   sm.Stats,
			Records: p.Records,
		})
	}
	return entries, nil
}
