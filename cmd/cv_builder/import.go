package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
	embedded "github.com/jonathan/cv-builder/schemas"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the working CV with a JSON document",
	Long: `Validate a CV document against the cv_data schema and make it the working CV.
Entries without IDs are given new ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if err := schemas.Validate(embedded.CVData, data); err != nil {
		return err
	}
	var doc types.CVData
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ed, err := a.newEditor(cmd.Context(), nil)
	if err != nil {
		return err
	}
	saved, err := ed.Replace(cmd.Context(), &doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported CV: %d experience, %d education, %d skills\n",
		len(saved.Experience), len(saved.Education), len(saved.Skills))
	return nil
}
