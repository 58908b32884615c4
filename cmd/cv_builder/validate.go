package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/schemas"
	embedded "github.com/jonathan/cv-builder/schemas"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate a JSON file against one of the embedded schemas",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", embedded.CVData,
		"Schema to validate against: "+strings.Join(embedded.Names(), ", "))
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if !slices.Contains(embedded.Names(), validateSchema) {
		return fmt.Errorf("unknown schema %q (expected one of: %s)", validateSchema, strings.Join(embedded.Names(), ", "))
	}
	if err := schemas.ValidateFile(validateSchema, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid against %s\n", args[0], validateSchema)
	return nil
}
