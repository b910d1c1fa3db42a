// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ParsePolicy selects how the parsers treat malformed lines.
type ParsePolicy string

const (
	// PolicyLenient skips malformed lines and keeps scanning.
	PolicyLenient ParsePolicy = "lenient"
	// PolicyStrict stops at the first malformed line with an error.
	PolicyStrict ParsePolicy = "strict"
)

// InputConfig holds the input path and the fallback candidates tried when no
// path is given on the command line.
type InputConfig struct {
	// Path is the report or structure file to process. Empty means "try
	// DefaultReports in order".
	Path string `json:"path" yaml:"path"`

	// DefaultReports lists candidate report paths, tried in order.
	DefaultReports []string `json:"default_reports" yaml:"default_reports"`
}

// OutputConfig holds where generated files go.
type OutputConfig struct {
	// Dir is the output directory. Empty means "next to the input file".
	Dir string `json:"dir" yaml:"dir"`
}

// ToolsConfig locates the external HOLE helper binaries.
type ToolsConfig struct {
	// Dir is the directory holding sph_process and qpt_conv.
	Dir string `json:"dir" yaml:"dir" validate:"required"`
}

// ParseConfig holds parser settings shared by the report and .sph parsers.
type ParseConfig struct {
	Policy ParsePolicy `json:"policy" yaml:"policy" validate:"oneof=lenient strict"`
}

// PlotConfig holds chart settings for the profile and compare stages.
type PlotConfig struct {
	Width            int  `json:"width" yaml:"width" validate:"gt=0"`
	Height           int  `json:"height" yaml:"height" validate:"gt=0"`
	ShowPoints       bool `json:"show_points" yaml:"show_points"`
	HighlightMinimum bool `json:"highlight_minimum" yaml:"highlight_minimum"`

	// PNG also renders the chart to PNG through headless Chrome.
	PNG bool `json:"png" yaml:"png"`
}

// SurfaceConfig holds settings for the pore surface pipeline.
type SurfaceConfig struct {
	// SphPath is the HOLE .sph file to process.
	SphPath string `json:"sph_path" yaml:"sph_path"`

	// ProteinPDB overrides protein structure discovery when set.
	ProteinPDB string `json:"protein_pdb,omitempty" yaml:"protein_pdb,omitempty"`

	// OutputDir overrides the directory for generated files (default: the
	// .sph file's directory).
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Dotden is the sph_process surface dot density (5-30, default 15).
	Dotden int `json:"dotden" yaml:"dotden" validate:"min=5,max=30"`

	// Timeout bounds the whole qpt_conv session.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`
}

// StoreConfig holds settings for the profile store.
type StoreConfig struct {
	// Dir holds profiles.db and the export files.
	Dir string `json:"dir" yaml:"dir" validate:"required"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
}

// Config is the explicit configuration object passed into every entry point.
type Config struct {
	Input   InputConfig   `json:"input" yaml:"input"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Tools   ToolsConfig   `json:"tools" yaml:"tools"`
	Parse   ParseConfig   `json:"parse" yaml:"parse"`
	Plot    PlotConfig    `json:"plot" yaml:"plot"`
	Surface SurfaceConfig `json:"surface" yaml:"surface"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
