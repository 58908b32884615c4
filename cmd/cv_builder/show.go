package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/observability"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the working CV",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the document as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ed, err := a.newEditor(cmd.Context(), nil)
	if err != nil {
		return err
	}

	if showJSON {
		return writeJSON(cmd.OutOrStdout(), ed.Document())
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCV(ed.Document())
	return nil
}
