// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the explicit types.Config handed to every holeviz
// entry point from a viper instance (config file, environment, flags).
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/holeviz/pkg/types"
)

// Keys recognised in holeviz.yaml and as HOLEVIZ_* environment variables.
const (
	KeyInputPath        = "input.path"
	KeyDefaultReports   = "input.default_reports"
	KeyOutputDir        = "output.dir"
	KeyToolsDir         = "tools.dir"
	KeyParseStrict      = "parse.strict"
	KeyPlotWidth        = "plot.width"
	KeyPlotHeight       = "plot.height"
	KeyPlotShowPoints   = "plot.show_points"
	KeyPlotHighlightMin = "plot.highlight_minimum"
	KeyPlotPNG          = "plot.png"
	KeySurfaceDotden    = "surface.dotden"
	KeySurfaceTimeout   = "surface.timeout"
	KeyStoreDir         = "store.dir"
	KeyLogLevel         = "log.level"
)

// DefaultReports are tried in order when no report path is given.
var DefaultReports = []string{
	"test_output/gramicidin_test_out.txt",
	"output/my_analysis_out.txt",
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefaultReports, DefaultReports)
	v.SetDefault(KeyToolsDir, "exe")
	v.SetDefault(KeyParseStrict, false)
	v.SetDefault(KeyPlotWidth, 1000)
	v.SetDefault(KeyPlotHeight, 600)
	v.SetDefault(KeyPlotShowPoints, true)
	v.SetDefault(KeyPlotHighlightMin, true)
	v.SetDefault(KeySurfaceDotden, 15)
	v.SetDefault(KeySurfaceTimeout, 60*time.Second)
	v.SetDefault(KeyStoreDir, "store")
	v.SetDefault(KeyLogLevel, "info")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads every key from v into a Config and validates it. Defaults are
// applied first, so a bare viper.New() yields the default configuration.
func Load(v *viper.Viper) (types.Config, error) {
	SetDefaults(v)

	policy := types.PolicyLenient
	if v.GetBool(KeyParseStrict) {
		policy = types.PolicyStrict
	}

	cfg := types.Config{
		Input: types.InputConfig{
			Path:           v.GetString(KeyInputPath),
			DefaultReports: v.GetStringSlice(KeyDefaultReports),
		},
		Output: types.OutputConfig{Dir: v.GetString(KeyOutputDir)},
		Tools:  types.ToolsConfig{Dir: v.GetString(KeyToolsDir)},
		Parse:  types.ParseConfig{Policy: policy},
		Plot: types.PlotConfig{
			Width:            v.GetInt(KeyPlotWidth),
			Height:           v.GetInt(KeyPlotHeight),
			ShowPoints:       v.GetBool(KeyPlotShowPoints),
			HighlightMinimum: v.GetBool(KeyPlotHighlightMin),
			PNG:              v.GetBool(KeyPlotPNG),
		},
		Surface: types.SurfaceConfig{
			Dotden:  v.GetInt(KeySurfaceDotden),
			Timeout: v.GetDuration(KeySurfaceTimeout),
		},
		Store: types.StoreConfig{Dir: v.GetString(KeyStoreDir)},
		Log:   types.LogConfig{Level: strings.ToLower(v.GetString(KeyLogLevel))},
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks the field constraints declared on the config structs.
func Validate(cfg types.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", keyOf(fe.Namespace()), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// keyOf turns a validator namespace like "Config.surface.dotden" into the
// dotted config key.
func keyOf(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
