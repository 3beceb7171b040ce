package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/bindery"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [id...]",
	Short: "Validate the catalog or a bundle selection",
	Long: `Without arguments, validate reports descriptor problems found while
scanning the catalog. With bundle IDs, it additionally checks the selection
for missing dependencies and declared conflicts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := bindery.Open(context.Background(), catalogDir,
			bindery.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open catalog", err)
		}

		failed := false
		for _, d := range cat.Diagnostics() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d.String())
		}

		if len(args) > 0 {
			report := cat.ValidateCompatibility(args)
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			for _, conflict := range report.Conflicts {
				fmt.Fprintf(os.Stderr, "conflict: %s conflicts with %s\n", conflict.ID, conflict.With)
			}
			if !report.Compatible {
				failed = true
			}
		}

		if failed {
			fmt.Println("Selection is not compatible.")
			os.Exit(1)
		}
		fmt.Printf("Catalog OK (%d bundles).\n", cat.Len())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
