package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/bindery"
	"github.com/aretw0/bindery/pkg/core"
	"github.com/spf13/cobra"
)

var (
	listJSON     bool
	listCategory string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all bundles in the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := bindery.Open(context.Background(), catalogDir,
			bindery.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open catalog", err)
		}

		var bundles []core.BundleMetadata
		if listCategory != "" {
			category := core.Category(listCategory)
			if !category.Valid() {
				fmt.Fprintf(os.Stderr, "Unknown category %q. Valid: %v\n", listCategory, core.Categories)
				os.Exit(1)
			}
			bundles = cat.ByCategory(category)
		} else {
			bundles = cat.All()
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(bundles); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, b := range bundles {
			fmt.Printf("%-24s %-20s priority=%d  %s\n", b.ID, b.Category, b.Priority, b.Name)
		}

		for _, d := range cat.Diagnostics() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter bundles by category")
}
