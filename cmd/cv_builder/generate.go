package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/generation"
	"github.com/jonathan/cv-builder/internal/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate <kind> [input...]",
	Short: "Generate content for the working CV",
	Long: "Generate one kind of CV content with Gemini and merge it into the working document.\n\n" +
		"Kinds: summary, experience_responsibilities, education_details, skill_suggestions,\n" +
		"new_experience_entry, new_education_entry, initial_cv_from_title,\n" +
		"initial_cv_from_job_description, tailor_cv_to_job_description.\n\n" +
		"Section kinds are only merged when --target names an entry ID (see `show`).\n" +
		"Pass \"-\" as the input to read it from stdin.",
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

var (
	genContext      string
	genTarget       string
	genJobURL       string
	genJobFile      string
	genBrowser      bool
	genNoStructural bool
	genDryRun       bool
	genJSON         bool
)

func init() {
	generateCmd.Flags().StringVar(&genContext, "context", "", "Request context as JSON, or @file to read it from a file")
	generateCmd.Flags().StringVar(&genTarget, "target", "", "ID of the entry a section result is merged into")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "Fetch the job description from this URL")
	generateCmd.Flags().StringVar(&genJobFile, "job-file", "", "Read the job description from this file")
	generateCmd.Flags().BoolVar(&genBrowser, "browser", false, "Render job pages in headless Chrome when plain HTTP yields too little text")
	generateCmd.Flags().BoolVar(&genNoStructural, "no-structural", false, "Tailoring keeps job titles and adds no new entries")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Print the result without changing the working document")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	input, err := readInput(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}
	rawContext, err := contextArg(genContext)
	if err != nil {
		return err
	}
	req, err := generation.NewRequest(args[0], input, rawContext)
	if err != nil {
		return err
	}
	if genTarget != "" {
		req.Context.TargetID = genTarget
	}
	if genNoStructural {
		allow := false
		req.Context.AllowStructuralChanges = &allow
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if req.Kind.UsesJobDescription() {
		text, err := jobDescription(ctx, a.newLoader(genBrowser), genJobURL, genJobFile, req.Input)
		if err != nil {
			return err
		}
		req.Input = text
	} else if genJobURL != "" || genJobFile != "" {
		return fmt.Errorf("--job-url and --job-file only apply to job description kinds")
	}

	return execute(cmd, a, req, genDryRun, genJSON)
}

// contextArg returns the raw JSON of a --context flag, reading @file references.
func contextArg(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		return data, nil
	}
	return []byte(value), nil
}

// execute runs req against the working document and prints the outcome.
func execute(cmd *cobra.Command, a *app, req generation.Request, dryRun, asJSON bool) error {
	ctx := cmd.Context()

	dispatcher, err := a.newDispatcher(ctx)
	if err != nil {
		return err
	}
	ed, err := a.newEditor(ctx, dispatcher)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		usesDocument := req.Kind == generation.KindTailorCVToJobDescription || req.Kind == generation.KindSummary
		if req.Context.ExistingCV == nil && usesDocument {
			req.Context.ExistingCV = ed.Document()
		}
		result, err := dispatcher.Generate(ctx, req)
		if err != nil {
			return err
		}
		return printResult(out, result, asJSON)
	}

	outcome, err := ed.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := printResult(out, outcome.Result, asJSON); err != nil {
		return err
	}
	if asJSON {
		return nil
	}
	if outcome.Merge != nil {
		observability.NewPrinter(out).PrintMergeStats(*outcome.Merge)
	}
	if outcome.Applied {
		fmt.Fprintln(out, "✓ Working CV updated")
	} else {
		fmt.Fprintln(out, "Result not merged: pass --target with an entry ID to apply it")
	}
	return nil
}

// printResult writes a generation result in human-readable form, or as JSON.
func printResult(out io.Writer, result *generation.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(out, result.Data())
	}

	p := observability.NewPrinter(out)
	switch {
	case result.Kind == generation.KindSummary:
		p.PrintText("SUMMARY", result.Text)
	case result.Kind.IsList():
		title := strings.ToUpper(strings.ReplaceAll(string(result.Kind), "_", " "))
		if result.Fallback {
			title += " (from unstructured text)"
		}
		p.PrintList(title, result.List)
	case result.Kind == generation.KindTailorCVToJobDescription:
		p.PrintTailoring(result.Tailoring)
	case result.Kind.IsFullCV():
		p.PrintCV(result.CV)
	default:
		return writeJSON(out, result.Data())
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
