// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pymol renders PyMOL scripts that load a protein together with the
// pore surface PDB written by porepdb.
package pymol

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pdiddy/holeviz/internal/tier"
	"github.com/pdiddy/holeviz/pkg/types"
)

// RadiusRange is the pore radius span from the sphere file. When present
// the pore is colored by tier instead of a flat cyan.
type RadiusRange struct {
	Min float64
	Max float64
}

// SurfaceScript describes a .pml script showing the protein as cartoon and
// surface with the pore surface on top.
type SurfaceScript struct {
	ProteinPDB string
	PorePDB    string
	Radius     *RadiusRange
}

type tierColor struct {
	Color   string
	Residue string
}

type surfaceData struct {
	Protein string
	Pore    string
	Radius  *RadiusRange
	Tiers   []tierColor
	Legend  []tier.LegendEntry
}

var surfaceTmpl = template.Must(template.New("surface").Parse(`# PyMOL visualization script
# Generated by holeviz from HOLE sph_process output

set color_space, cmyk
set_color grey70, [0.0, 0.0, 0.0, 0.3]
set_color orange, [0.0, 0.5, 1.0, 0.0]
bg_color white

load {{.Protein}}, protein_cartoon
hide everything, protein_cartoon
show cartoon, protein_cartoon
set transparency, 0.6, protein_cartoon
color orange, protein_cartoon

load {{.Protein}}, protein_surface
hide everything, protein_surface
show surface, protein_surface
set transparency, 0.8, protein_surface
color grey70, protein_surface

load {{.Pore}}, pore
hide everything, pore
show surface, pore
set surface_quality, 1, pore

{{if .Radius -}}
# Pore colored by radius, range {{printf "%.2f" .Radius.Min}} - {{printf "%.2f" .Radius.Max}} A
{{range .Tiers}}color {{.Color}}, resn {{.Residue}}
{{end}}
{{- else -}}
color cyan, pore
{{end}}
set ray_shadows, 1
set antialias, 2
set cartoon_transparency, 0.6, protein_cartoon
set surface_quality, 1

order protein_cartoon protein_surface pore

zoom all
center pore

print("=== HOLE Visualization ===")
print("Color space: CMYK")
print("Protein (Surface): grey70, 80% transparent")
print("Protein (Cartoon): orange, 60% transparent")
{{if .Radius -}}
print("Pore surface: colored by radius (HOLE standard)")
{{range .Legend}}print("  {{.}}")
{{end}}
{{- else -}}
print("Pore surface: cyan")
{{end -}}
`))

// WriteSurfaceScript renders s to w. Both PDB paths are made absolute so the
// script works from any directory.
func WriteSurfaceScript(w io.Writer, s SurfaceScript) error {
	protein, err := filepath.Abs(s.ProteinPDB)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.ProteinPDB, err)
	}
	pore, err := filepath.Abs(s.PorePDB)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.PorePDB, err)
	}

	data := surfaceData{Protein: protein, Pore: pore, Radius: s.Radius, Legend: tier.Legend()}
	for _, t := range tier.Order {
		data.Tiers = append(data.Tiers, tierColor{Color: tier.Color(t), Residue: tier.ResidueName(t)})
	}
	if err := surfaceTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering surface script: %w", err)
	}
	return nil
}

// DefaultSphereScale is the sphere_scale used for point spheres.
const DefaultSphereScale = 0.3

// SphereScript describes a python-API script drawing each point as its own
// pseudoatom sphere.
type SphereScript struct {
	ProteinPDB  string
	Points      []types.ColoredPoint
	SphereScale float64
}

type sphere struct {
	Name    string
	X, Y, Z float64
	Color   string
}

type sphereData struct {
	Protein string
	Scale   float64
	Spheres []sphere
	Legend  []tier.LegendEntry
}

var sphereTmpl = template.Must(template.New("spheres").Parse(`# PyMOL visualization script (individual spheres)
# Generated by holeviz from HOLE sph_process output

from pymol import cmd

cmd.load("{{.Protein}}", "protein")
cmd.hide("everything", "protein")
cmd.show("cartoon", "protein")
cmd.color("grey70", "protein")
cmd.set("cartoon_transparency", 0.3, "protein")

{{range .Spheres -}}
cmd.pseudoatom("{{.Name}}", pos=({{printf "%.3f" .X}}, {{printf "%.3f" .Y}}, {{printf "%.3f" .Z}}))
cmd.show("spheres", "{{.Name}}")
cmd.set("sphere_scale", {{$.Scale}}, "{{.Name}}")
cmd.color("{{.Color}}", "{{.Name}}")

{{end -}}
cmd.group("pore_spheres", "pore_sphere_*")

cmd.bg_color("white")
cmd.set("ray_shadows", 1)
cmd.set("antialias", 2)

cmd.zoom("protein")
cmd.center("protein")

print("=== HOLE Visualization (Individual Spheres) ===")
print("Protein: {{.Protein}}")
print("Total spheres: {{len .Spheres}}")
{{range .Legend}}print("  {{.}}")
{{end -}}
`))

// WriteSphereScript renders s to w. A zero SphereScale selects
// DefaultSphereScale.
func WriteSphereScript(w io.Writer, s SphereScript) error {
	protein, err := filepath.Abs(s.ProteinPDB)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.ProteinPDB, err)
	}
	scale := s.SphereScale
	if scale <= 0 {
		scale = DefaultSphereScale
	}

	data := sphereData{Protein: protein, Scale: scale, Legend: tier.Legend()}
	data.Spheres = make([]sphere, 0, len(s.Points))
	for i, p := range s.Points {
		data.Spheres = append(data.Spheres, sphere{
			Name:  fmt.Sprintf("pore_sphere_%d", i+1),
			X:     p.X,
			Y:     p.Y,
			Z:     p.Z,
			Color: tier.Color(p.Tier),
		})
	}
	if err := sphereTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering sphere script: %w", err)
	}
	return nil
}

// WriteFile creates path and renders into it with render.
func WriteFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Info("wrote PyMOL script", slog.String("path", path))
	return nil
}
