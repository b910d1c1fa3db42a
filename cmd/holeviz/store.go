// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/holeviz/internal/config"
	"github.com/pdiddy/holeviz/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the profile store (ingest, list, export)",
	Long: `Store keeps parsed pore radius profiles in a local SQLite database
(store.dir/profiles.db). Use subcommands to ingest a directory of HOLE
reports, list stored profiles or export them.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest <reports-dir>",
	Short: "Parse every .txt report in a directory into the store",
	Long: `Ingest parses each HOLE report (*.txt) in the directory and stores its
profile under the report's name without the _out suffix. Reports unchanged
since the last run are skipped; changed ones replace their stored records.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(cfg.Store, cfg.Parse.Policy)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(cmd.Context(), args[0], cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d report(s) failed ingesting", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles with their summary statistics",
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	narrower, _ := cmd.Flags().GetFloat64("narrower-than")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := store.NewStore(cfg.Store, cfg.Parse.Policy)
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.Profiles(cmd.Context(), store.ListOptions{NarrowerThan: narrower, Limit: limit})
	if err != nil {
		return err
	}
	return formatList(cmd.OutOrStdout(), summaries, jsonOutput)
}

func formatList(w io.Writer, summaries []store.Summary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No profiles stored.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %7s  %8s  %8s  %8s  %8s\n",
		"Profile", "Points", "Min (Å)", "At (Å)", "Max (Å)", "Mean (Å)")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, sm := range summaries {
		name := sm.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		st := sm.Stats
		fmt.Fprintf(w, "%-30s  %7d  %8.3f  %8.3f  %8.3f  %8.3f\n",
			name, st.Count, st.MinRadius, st.MinPosition, st.MaxRadius, st.MeanRadius)
	}
	fmt.Fprintf(w, "\n%d profiles\n", len(summaries))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored profile to YAML or JSON",
	Long: `Export writes all stored profiles with their statistics and records to
store.dir/export.yaml or store.dir/export.json.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(cfg.Store, cfg.Parse.Policy)
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context())
	case "json":
		path, err = s.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "store", "directory holding profiles.db and exports")
	bindFlag(config.KeyStoreDir, storeCmd.PersistentFlags().Lookup("store-dir"))

	storeListCmd.Flags().Float64("narrower-than", 0, "only profiles whose minimum radius is below this value (Å)")
	storeListCmd.Flags().Int("limit", 0, "maximum profiles to list (0 = all)")
	storeListCmd.Flags().Bool("json", false, "output as JSON")

	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
