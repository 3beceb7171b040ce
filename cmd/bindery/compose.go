package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/bindery"
	"github.com/aretw0/bindery/pkg/adapters/fs"
	"github.com/spf13/cobra"
)

var (
	composeOut       string
	composeDryRun    bool
	composeForce     bool
	composeStrict    bool
	composeLenient   bool
	composeVersioned bool
)

// composeCmd represents the compose command
var composeCmd = &cobra.Command{
	Use:   "compose [id...]",
	Short: "Compose a selection of bundles",
	Long: `Merge the selected bundles into a single workspace: one composed
document, deduplicated artifacts and a folded settings object.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		result, err := bindery.Compose(ctx, catalogDir, args,
			bindery.WithLogger(slog.Default()),
			bindery.WithStrictConflicts(composeStrict),
			bindery.WithLenient(composeLenient),
		)
		if err != nil {
			fatal("Failed to compose", err)
		}

		for _, d := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d.String())
		}
		for _, w := range result.Compatibility.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		for _, conflict := range result.Compatibility.Conflicts {
			fmt.Fprintf(os.Stderr, "conflict: %s conflicts with %s\n", conflict.ID, conflict.With)
		}

		if composeDryRun {
			fmt.Print(result.Document)
			fmt.Fprintf(os.Stderr, "\n%d bundle(s), %d agent(s), %d command(s), %d hook(s)\n",
				len(result.Bundles), len(result.Agents), len(result.Commands), len(result.Hooks))
			return
		}

		existing := filepath.Join(composeOut, fs.OutputDocument)
		if _, err := os.Stat(existing); err == nil && !composeForce {
			fmt.Fprintf(os.Stderr, "%s already exists; pass --force to overwrite (a backup is kept)\n", existing)
			os.Exit(1)
		}

		writer := bindery.NewWriter(composeOut,
			bindery.WithLogger(slog.Default()),
			bindery.WithVersioning(composeVersioned),
		)
		written, err := writer.Write(ctx, result)
		if err != nil {
			fatal("Failed to write composition", err)
		}

		for _, path := range written {
			fmt.Printf("wrote %s\n", path)
		}
		fmt.Printf("Composed %d bundle(s) into %s.\n", len(result.Bundles), composeOut)
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().StringVarP(&composeOut, "out", "o", ".", "Output directory")
	composeCmd.Flags().BoolVar(&composeDryRun, "dry-run", false, "Print the composed document instead of writing")
	composeCmd.Flags().BoolVarP(&composeForce, "force", "f", false, "Overwrite an existing composed document")
	composeCmd.Flags().BoolVar(&composeStrict, "strict", false, "Fail when the selection contains conflicts")
	composeCmd.Flags().BoolVar(&composeLenient, "lenient", false, "Skip bundles that fail to parse")
	composeCmd.Flags().BoolVar(&composeVersioned, "versioned", false, "Stage and commit the written files with git")
}
