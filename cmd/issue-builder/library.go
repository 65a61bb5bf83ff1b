// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issue-builder/internal/library"
	"github.com/pdiddy/issue-builder/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the catalog of built issues (store, search, export)",
	Long: `Library keeps a local SQLite catalog of the issues written by build.
Use subcommands to index issue files, search articles, or export.`,
}

// --- store subcommand ---

var libraryStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index built issues and rewrite the front-end issue list",
	Long: `Store reads data/issues/*.json, loads new or changed issues into the
catalog, and rewrites data/issues.json. Unchanged issue files are skipped on
subsequent runs.`,
	RunE: runLibraryStore,
}

func runLibraryStore(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d issue(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search articles by title, summary, or insight",
	Long: `Search matches every query term as a substring of an article's title,
summary, or insight. Results list the newest issue first and follow outline
order within an issue. Output is a table on a terminal and CSV otherwise.`,
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --issue")
	}

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []library.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	headers := []string{"Issue", "Date", "Page", "Title", "Summary"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.IssueID,
			r.PublishDate,
			strconv.Itoa(r.PageNumber),
			r.Title,
			clip(r.Summary, 40),
		})
	}
	return writeTable(os.Stdout, headers, rows, aligns)
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the front-end issue list and a YAML article dump",
	Long: `Export rewrites data/issues.json from the catalog. With --yaml it also
writes matching articles to index/export.yaml; the same filters as search
select a partial dump.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.ExportIssueList(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)

	if withYAML, _ := cmd.Flags().GetBool("yaml"); withYAML {
		path, err := store.ExportYAML(cmd.Context(), queryOptsFromFlags(cmd, args))
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	}
	return nil
}

// --- shared helpers ---

func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	return types.LibraryConfig{
		DataDir:    stringSetting(cmd, "data-dir"),
		IndexDir:   stringSetting(cmd, "index-dir"),
		MaxResults: intSetting(cmd, "max-results"),
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) library.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	issueID, _ := cmd.Flags().GetString("issue")
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:      queryText,
		IssueID:    issueID,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("data-dir", "data", "published data tree (contains issues/, issues.json)")
	libraryCmd.PersistentFlags().String("index-dir", "index", "directory for the catalog database and YAML export")
	libraryCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	// Search flags.
	librarySearchCmd.Flags().String("query", "", "search terms")
	librarySearchCmd.Flags().String("issue", "", "filter by issue ID")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	libraryExportCmd.Flags().Bool("yaml", false, "also write index/export.yaml")
	libraryExportCmd.Flags().String("query", "", "search filter for the YAML dump")
	libraryExportCmd.Flags().String("issue", "", "issue ID filter for the YAML dump")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryStoreCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
