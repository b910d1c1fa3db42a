//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Profile builds the CLI and runs the profile stage on report.
func Profile(report string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "profile", report)
}

// Compare builds the CLI and overlays the profiles of two reports.
func Compare(a, b string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "compare", a, b)
}

// Surface builds the CLI and runs the pore surface pipeline on a .sph file.
func Surface(sph string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "surface", sph)
}

// Store groups targets for the profile store.
type Store mg.Namespace

// Ingest loads every report in dir into the profile store.
func (Store) Ingest(dir string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "store", "ingest", dir)
}

// Export writes the profile store to store/export.yaml.
func (Store) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "store", "export")
}
