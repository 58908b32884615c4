// Package observability provides logging setup and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed, human-readable summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeList(sb *strings.Builder, indent string, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("%s• %s\n", indent, items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("%s... and %d more\n", indent, len(items)-limit))
	}
}

// PrintCV outputs the document section by section, with entry IDs so they
// can be passed back as targets.
func (p *Printer) PrintCV(doc *types.CVData) {
	if doc == nil {
		return
	}
	info := doc.PersonalInfo

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", info.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", info.Title))
	if info.Email != "" && info.ShowEmail {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", info.Email))
	}
	if info.Phone != "" && info.ShowPhone {
		sb.WriteString(fmt.Sprintf("Phone:    %s\n", info.Phone))
	}
	p.printBox("PERSONAL INFO", strings.TrimSuffix(sb.String(), "\n"))

	if doc.Summary != "" {
		p.printBox("SUMMARY", wrap(doc.Summary, boxWidth-4))
	}

	if len(doc.Experience) > 0 {
		sb.Reset()
		for i, e := range doc.Experience {
			sb.WriteString(fmt.Sprintf("[%s] %s @ %s\n", e.ID, e.JobTitle, e.Company))
			if dates := strings.Trim(e.StartDate+" - "+e.EndDate, " -"); dates != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", dates))
			}
			writeList(&sb, "    ", e.Responsibilities, maxItemsToShow)
			if i < len(doc.Experience)-1 {
				sb.WriteString("\n")
			}
		}
		p.printBox("EXPERIENCE", strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(doc.Education) > 0 {
		sb.Reset()
		for _, e := range doc.Education {
			sb.WriteString(fmt.Sprintf("[%s] %s, %s\n", e.ID, e.Degree, e.Institution))
			writeList(&sb, "    ", e.Details, 3)
		}
		p.printBox("EDUCATION", strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(doc.Skills) > 0 {
		sb.Reset()
		for _, s := range doc.Skills {
			sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", s.ID, s.Category, strings.Join(s.Skills, ", ")))
		}
		p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
	}
}

// PrintList outputs a generated list under title.
func (p *Printer) PrintList(title string, items []string) {
	if len(items) == 0 {
		p.printBox(title, "(empty)")
		return
	}
	var sb strings.Builder
	writeList(&sb, "", items, len(items))
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintText outputs wrapped free text under title.
func (p *Printer) PrintText(title, text string) {
	p.printBox(title, wrap(text, boxWidth-4))
}

// PrintTailoring outputs a tailoring update before it is merged.
func (p *Printer) PrintTailoring(update *types.TailoredCVUpdate) {
	if update == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Summary:\n")
	sb.WriteString(wrap(update.UpdatedSummary, boxWidth-6))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Skill categories: %d\n", len(update.UpdatedSkills)))
	for _, patch := range update.UpdatedExperience {
		line := fmt.Sprintf("Patch [%s]", patch.ID)
		if patch.UpdatedJobTitle != "" {
			line += " title → " + patch.UpdatedJobTitle
		}
		if patch.Responsibilities != nil {
			line += fmt.Sprintf(", %d responsibilities", len(patch.Responsibilities))
		}
		sb.WriteString(line + "\n")
	}
	if n := len(update.SuggestedNewExperienceEntries); n > 0 {
		sb.WriteString(fmt.Sprintf("Suggested new entries: %d\n", n))
	}

	p.printBox("TAILORING UPDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMergeStats outputs what a tailoring merge changed.
func (p *Printer) PrintMergeStats(stats cv.MergeStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Patched experience:  %d\n", stats.PatchedExperience))
	sb.WriteString(fmt.Sprintf("Added experience:    %d\n", stats.AddedExperience))
	if stats.DroppedSuggestions > 0 {
		sb.WriteString(fmt.Sprintf("Dropped suggestions: %d\n", stats.DroppedSuggestions))
	}
	if len(stats.SkippedIDs) > 0 {
		sb.WriteString(fmt.Sprintf("⚠ Unknown IDs skipped: %s\n", strings.Join(stats.SkippedIDs, ", ")))
	}
	p.printBox("MERGE RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
