// Package main provides the CLI entry point for decktab.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dlg0/decktab/pkg/decktab"
)

var (
	outputDir  string
	schemaPath string
	verbose    bool

	diffOutput string

	reportOutput string
	limitRows    int

	repoRoot string
	baseRef  string
	headRef  string
)

func main() {
	// A .env next to the invocation may carry DECKTAB_SCHEMA / DECKTAB_OUTPUT_DIR.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "decktab",
		Short: "Extract, validate, and diff tagged Excel tables",
		Long: `decktab extracts ~-tagged tables from Excel decks into deterministic,
git-friendly CSV shadow files plus a JSON index, and diffs and validates
those extracts across snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Shadow output directory (default: shadow)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Tag schema file (default: embedded schema)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	extractCmd := &cobra.Command{
		Use:   "extract [deck_root]",
		Short: "Extract tagged tables from Excel workbooks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	formatCmd := &cobra.Command{
		Use:   "format [deck_root]",
		Short: "Re-canonicalize existing shadow CSVs",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [deck_root]",
		Short: "Validate shadow tables against the schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	diffCmd := &cobra.Command{
		Use:   "diff [deck_a] [deck_b]",
		Short: "Compute a structured diff between two decks",
		Long: `Compute a structured JSON diff between two deck versions.

Exit status is 0 when no differences were found, 1 when differences exist
or an error occurred; inspect the output to tell the two apart.`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "Output file for diff JSON (default: stdout)")

	reportCmd := &cobra.Command{
		Use:   "report [deck_a] [deck_b]",
		Short: "Generate a self-contained HTML diff report",
		Args:  cobra.ExactArgs(2),
		RunE:  runReport,
	}
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output HTML file path")
	reportCmd.Flags().IntVar(&limitRows, "limit-rows", 2000, "Maximum rows per table in the detailed diff")
	_ = reportCmd.MarkFlagRequired("output")

	diffCommitsCmd := &cobra.Command{
		Use:   "diff-commits",
		Short: "Generate an HTML diff report between two git commits",
		Args:  cobra.NoArgs,
		RunE:  runDiffCommits,
	}
	diffCommitsCmd.Flags().StringVar(&repoRoot, "repo-root", ".", "Git repository root")
	diffCommitsCmd.Flags().StringVar(&baseRef, "base-ref", "HEAD~1", "Base commit reference")
	diffCommitsCmd.Flags().StringVar(&headRef, "head-ref", "HEAD", "Head commit reference")
	diffCommitsCmd.Flags().StringVarP(&reportOutput, "output", "o", "deck-diff.html", "Output HTML file path")
	diffCommitsCmd.Flags().IntVar(&limitRows, "limit-rows", 2000, "Maximum rows per table in the detailed diff")

	rootCmd.AddCommand(extractCmd, formatCmd, validateCmd, diffCmd, reportCmd, diffCommitsCmd)

	if err := rootCmd.Execute(); err != nil {
		// Differences and validation failures already reported themselves;
		// they only need the non-zero status.
		if !errors.Is(err, decktab.ErrDifferencesFound) && !errors.Is(err, decktab.ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// buildOptions assembles options with precedence defaults < config file <
// environment < flags.
func buildOptions() (decktab.Options, error) {
	opts := decktab.DefaultOptions()

	workDir, err := os.Getwd()
	if err != nil {
		return opts, err
	}
	cfg, err := LoadConfig(workDir)
	if err != nil {
		return opts, err
	}

	if cfg.OutputDir != "" {
		opts.OutputDir = cfg.OutputDir
	}
	if cfg.SchemaPath != "" {
		opts.SchemaPath = cfg.SchemaPath
	}
	if env := os.Getenv("DECKTAB_OUTPUT_DIR"); env != "" {
		opts.OutputDir = env
	}
	if env := os.Getenv("DECKTAB_SCHEMA"); env != "" {
		opts.SchemaPath = env
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if schemaPath != "" {
		opts.SchemaPath = schemaPath
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return opts, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	// Reuse the previous snapshot when one exists so unchanged workbooks
	// are carried forward instead of re-extracted.
	if prior, err := decktab.LoadDeckIndex(args[0], opts); err == nil {
		opts.PriorIndex = prior
	}

	result, err := decktab.Extract(args[0], opts)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d tables from %d workbooks (%d reused)\n",
		len(result.Index.Tables), len(result.Index.Workbooks), len(result.Reused))
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	if err := decktab.Format(args[0], opts); err != nil {
		return err
	}
	fmt.Println("Formatted shadow tables")
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	result, err := decktab.Validate(args[0], opts)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	if !result.OK() {
		fmt.Fprintf(os.Stderr, "Validation failed with %d error(s):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		return decktab.ErrValidationFailed
	}

	fmt.Printf("All %d table(s) valid\n", result.TablesChecked)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	indexA, err := decktab.LoadDeckIndex(args[0], opts)
	if err != nil {
		return err
	}
	indexB, err := decktab.LoadDeckIndex(args[1], opts)
	if err != nil {
		return err
	}

	result := decktab.Diff(indexA, indexB, args[0], args[1])

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if diffOutput != "" {
		if err := os.WriteFile(diffOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Diff written to %s\n", diffOutput)
	} else {
		os.Stdout.Write(data)
	}

	if result.HasChanges() {
		return decktab.ErrDifferencesFound
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	if err := decktab.Report(args[0], args[1], reportOutput, limitRows, opts); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", reportOutput)
	return nil
}

func runDiffCommits(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	if err := decktab.DiffCommits(repoRoot, baseRef, headRef, reportOutput, limitRows, opts); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", reportOutput)
	return nil
}
