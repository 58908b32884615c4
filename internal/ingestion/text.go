// Package ingestion turns job postings from files, URLs or raw text into clean
// job description text for prompting.
package ingestion

import (
	"regexp"
	"strings"
)

// MaxJobDescriptionChars caps the job description passed to the model.
const MaxJobDescriptionChars = 20000

var (
	multiSpace  = regexp.MustCompile(`[ \t\f\v]+`)
	manyBlanks  = regexp.MustCompile(`\n{3,}`)
	bulletGlyph = regexp.MustCompile(`^[•·▪◦●]\s*`)
)

// CleanText normalizes line endings and whitespace, turns bullet glyphs into
// "- " items and keeps at most one blank line between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := manyBlanks.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if bulletGlyph.MatchString(trimmed) {
		trimmed = "- " + bulletGlyph.ReplaceAllString(trimmed, "")
	}
	return multiSpace.ReplaceAllString(trimmed, " ")
}

// Truncate cuts text to at most limit runes, preferring a line boundary.
func Truncate(text string, limit int) (string, bool) {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text, false
	}
	cut := string(r[:limit])
	if i := strings.LastIndex(cut, "\n"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut), true
}
