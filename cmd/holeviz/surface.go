// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/holeviz/internal/config"
	"github.com/pdiddy/holeviz/internal/hole"
	"github.com/pdiddy/holeviz/internal/porepdb"
	"github.com/pdiddy/holeviz/internal/pymol"
	"github.com/pdiddy/holeviz/internal/sph"
	"github.com/pdiddy/holeviz/internal/surface"
	"github.com/pdiddy/holeviz/pkg/types"
)

var surfaceCmd = &cobra.Command{
	Use:   "surface <sph-file>",
	Short: "Build a colored pore surface PDB and PyMOL script from a HOLE .sph file",
	Long: `Surface runs HOLE's sph_process to generate surface dots, converts them to
VMD plot text with qpt_conv, colors each dot by pore radius and writes a pore
PDB plus a PyMOL script that overlays it on the protein.

The helper binaries are looked up in tools.dir (default: exe). The protein
structure is found beside the .sph file unless --protein is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSurface,
}

// surfaceExtras are the optional outputs written after the pipeline.
type surfaceExtras struct {
	Spheres  bool
	Cylinder int
}

func runSurface(cmd *cobra.Command, args []string) error {
	// .sph inputs have no default candidates; the report defaults do not apply.
	path, err := resolveInput(cmd, args, types.InputConfig{Path: cfg.Input.Path})
	if err != nil {
		return err
	}

	sc := cfg.Surface
	sc.SphPath = path
	sc.OutputDir = cfg.Output.Dir
	sc.ProteinPDB, _ = cmd.Flags().GetString("protein")
	if cmd.Flags().Changed("dotden") {
		sc.Dotden, _ = cmd.Flags().GetInt("dotden")
	}
	if cmd.Flags().Changed("timeout") {
		sc.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}

	var extras surfaceExtras
	extras.Spheres, _ = cmd.Flags().GetBool("spheres")
	extras.Cylinder, _ = cmd.Flags().GetInt("cylinder")

	tools := hole.New(cfg.Tools.Dir)
	if err := tools.Available(); err != nil {
		return err
	}
	return buildSurface(cmd.Context(), cmd.OutOrStdout(), sc, tools, extras)
}

func buildSurface(ctx context.Context, w io.Writer, sc types.SurfaceConfig, tools surface.Tools, extras surfaceExtras) error {
	rule(w)
	fmt.Fprintln(w, "HOLE to PyMOL")
	rule(w)
	fmt.Fprintf(w, "\nInput: %s\n\n", sc.SphPath)

	res := surface.Run(ctx, sc, tools, w)
	if !res.OK {
		return fmt.Errorf("surface pipeline failed at %s: %w", res.Stage, res.Err)
	}

	out := surface.OutputPaths(sc.SphPath, sc.OutputDir)
	if extras.Spheres && res.ProteinPDB != "" {
		path := strings.TrimSuffix(out.Script, ".pml") + "_spheres.py"
		script := pymol.SphereScript{ProteinPDB: res.ProteinPDB, Points: res.Colored}
		err := pymol.WriteFile(path, func(w io.Writer) error {
			return pymol.WriteSphereScript(w, script)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Sphere script: %s\n", path)
	}

	if extras.Cylinder > 0 {
		path, n, err := writeCylinder(sc, out, extras.Cylinder)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Cylinder PDB: %s (%d atoms)\n", path, n)
	}

	fmt.Fprintln(w)
	rule(w)
	fmt.Fprintln(w, "Done")
	rule(w)
	fmt.Fprintf(w, "Pore PDB: %s\n", res.PorePDB)
	if res.Script != "" {
		fmt.Fprintf(w, "PyMOL:    pymol %s\n", res.Script)
	}
	return nil
}

// writeCylinder writes a uniform cylinder approximation of the pore built
// from the sphere centres, perSlice points per centre.
func writeCylinder(sc types.SurfaceConfig, out surface.Outputs, perSlice int) (string, int, error) {
	points, err := sph.ParseFile(sc.SphPath, sph.Options{Policy: cfg.Parse.Policy})
	if err != nil {
		return "", 0, err
	}
	colored := surface.CylinderPoints(points, perSlice)
	path := filepath.Join(filepath.Dir(out.PorePDB), strings.TrimSuffix(filepath.Base(out.PorePDB), "_pore_surface.pdb")+"_cylinder.pdb")
	if err := porepdb.WriteFile(path, colored); err != nil {
		return "", 0, err
	}
	return path, len(colored), nil
}

func init() {
	surfaceCmd.Flags().String("tools-dir", "exe", "directory holding sph_process and qpt_conv")
	bindFlag(config.KeyToolsDir, surfaceCmd.Flags().Lookup("tools-dir"))
	surfaceCmd.Flags().String("protein", "", "protein PDB to overlay (default: found beside the .sph file)")
	surfaceCmd.Flags().Int("dotden", hole.DefaultDotden, "sph_process dot density (5-30)")
	surfaceCmd.Flags().Duration("timeout", hole.DefaultTimeout, "time limit for the qpt_conv session")
	surfaceCmd.Flags().Bool("spheres", false, "also write a PyMOL python script drawing each dot as a sphere")
	surfaceCmd.Flags().Int("cylinder", 0, "also write a cylinder pore PDB with this many points per sphere centre")

	rootCmd.AddCommand(surfaceCmd)
}
