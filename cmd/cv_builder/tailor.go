package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/generation"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [job description...]",
	Short: "Tailor the working CV to a job description",
	Long: `Rewrite the summary, skills and experience of the working CV for one job.

The job description comes from inline text, "-" for stdin, --job-url or --job-file.
With --no-structural, job titles are kept and no experience entries are added.`,
	RunE: runTailor,
}

var (
	tailorJobURL       string
	tailorJobFile      string
	tailorBrowser      bool
	tailorNoStructural bool
	tailorDryRun       bool
	tailorJSON         bool
)

func init() {
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "Fetch the job description from this URL")
	tailorCmd.Flags().StringVar(&tailorJobFile, "job-file", "", "Read the job description from this file")
	tailorCmd.Flags().BoolVar(&tailorBrowser, "browser", false, "Render job pages in headless Chrome when plain HTTP yields too little text")
	tailorCmd.Flags().BoolVar(&tailorNoStructural, "no-structural", false, "Keep job titles and add no new entries")
	tailorCmd.Flags().BoolVar(&tailorDryRun, "dry-run", false, "Print the proposed changes without applying them")
	tailorCmd.Flags().BoolVar(&tailorJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	jd, err := jobDescription(ctx, a.newLoader(tailorBrowser), tailorJobURL, tailorJobFile, text)
	if err != nil {
		return err
	}

	req := generation.Request{Kind: generation.KindTailorCVToJobDescription, Input: jd}
	if tailorNoStructural {
		allow := false
		req.Context.AllowStructuralChanges = &allow
	}
	if req.Input == "" {
		return &generation.ValidationError{Field: "userInput", Message: "job description is required"}
	}

	return execute(cmd, a, req, tailorDryRun, tailorJSON)
}
