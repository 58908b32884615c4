// Package schemas embeds the JSON Schemas that generated CV content is validated against.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	CVData          = "cv_data.schema.json"
	ExperienceEntry = "experience_entry.schema.json"
	EducationEntry  = "education_entry.schema.json"
	TailoredUpdate  = "tailored_update.schema.json"
	StringList      = "string_list.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw content of a schema file.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}

// Names lists every embedded schema.
func Names() []string {
	return []string{CVData, ExperienceEntry, EducationEntry, TailoredUpdate, StringList}
}
