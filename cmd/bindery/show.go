package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/bindery"
	"github.com/aretw0/bindery/pkg/adapters/fs"
	"github.com/spf13/cobra"
)

var (
	showJSON bool
	showRaw  bool
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a bundle",
	Long:  `Show a bundle by its ID: metadata, artifacts and the primary document.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		cat, err := bindery.Open(context.Background(), catalogDir,
			bindery.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open catalog", err)
		}

		meta, ok := cat.Get(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Bundle %q not found in catalog\n", id)
			os.Exit(1)
		}

		parser := fs.NewParser(slog.Default())
		bundle, diags, err := parser.Parse(context.Background(), meta)
		if err != nil {
			fatal("Failed to parse bundle", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(bundle); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		if showRaw {
			fmt.Print(bundle.Document)
			return
		}

		fmt.Printf("%s (%s)\n", meta.ID, meta.Name)
		fmt.Printf("  category: %s\n", meta.Category)
		fmt.Printf("  priority: %d\n", meta.Priority)
		if len(meta.Dependencies) > 0 {
			fmt.Printf("  depends:  %v\n", meta.Dependencies)
		}
		if len(meta.Conflicts) > 0 {
			fmt.Printf("  conflicts: %v\n", meta.Conflicts)
		}
		for _, a := range bundle.Agents {
			fmt.Printf("  agent:    %s\n", a.Name)
		}
		for _, c := range bundle.Commands {
			fmt.Printf("  command:  %s\n", c.Name)
		}
		for _, h := range bundle.Hooks {
			fmt.Printf("  hook:     %s\n", h.Name)
		}

		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print only the primary document")
}
