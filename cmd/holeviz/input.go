// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/holeviz/pkg/types"
)

// errMissingInput is returned after the usage text has been printed so the
// process exits non-zero.
var errMissingInput = errors.New("input file not found")

// envKeyReplacer maps config keys like "surface.dotden" to
// HOLEVIZ_SURFACE_DOTDEN.
var envKeyReplacer = strings.NewReplacer(".", "_")

// resolveInput picks the file a command works on: the positional argument
// when given, else the configured input.path, else the first existing
// default candidate. An explicit path that does not exist is not replaced by
// a default. When nothing exists it prints usage to stderr and returns
// errMissingInput.
func resolveInput(cmd *cobra.Command, args []string, in types.InputConfig) (string, error) {
	explicit := in.Path
	if len(args) > 0 {
		explicit = args[0]
	}
	if explicit != "" {
		if fileExists(explicit) {
			return explicit, nil
		}
		return "", missingInput(cmd, []string{explicit})
	}
	for _, c := range in.DefaultReports {
		if fileExists(c) {
			return c, nil
		}
	}
	return "", missingInput(cmd, in.DefaultReports)
}

func missingInput(cmd *cobra.Command, tried []string) error {
	w := cmd.ErrOrStderr()
	if len(tried) == 0 {
		fmt.Fprintln(w, "No input file given.")
	} else {
		fmt.Fprintf(w, "File not found: %s\n", strings.Join(tried, ", "))
	}
	fmt.Fprintf(w, "\nUsage:\n  %s\n", cmd.UseLine())
	return errMissingInput
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// outputPath relocates a derived output file into the configured output
// directory, if one is set.
func outputPath(path string) string {
	if cfg.Output.Dir == "" {
		return path
	}
	return filepath.Join(cfg.Output.Dir, filepath.Base(path))
}

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
