package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/prompts"
	"github.com/jonathan/cv-builder/internal/types"
)

const notAvailable = "N/A"

// tailorSubset is the part of the CV sent with a tailoring prompt.
type tailorSubset struct {
	Summary    string             `json:"summary"`
	Skills     []types.SkillEntry `json:"skills"`
	Experience []tailorExperience `json:"experience"`
}

type tailorExperience struct {
	ID               string   `json:"id"`
	JobTitle         string   `json:"jobTitle"`
	Company          string   `json:"company"`
	Responsibilities []string `json:"responsibilities"`
}

// BuildPrompt renders the prompt for a validated request.
func BuildPrompt(req Request) (string, error) {
	c := req.Context
	data := map[string]string{"Input": req.EffectiveInput()}

	switch req.Kind {
	case KindSummary:
		data["ExperienceContext"] = experienceContext(c.ExistingCV)
	case KindExperienceResponsibilities:
		data["JobTitle"] = orDefault(c.JobTitle, notAvailable)
		data["Company"] = orDefault(c.Company, notAvailable)
	case KindEducationDetails:
		data["Degree"] = orDefault(c.Degree, notAvailable)
		data["Institution"] = orDefault(c.Institution, notAvailable)
	case KindSkillSuggestions:
		data["SkillCategory"] = orDefault(c.SkillCategory, "General Skills")
	case KindTailorCVToJobDescription:
		current, err := currentCVJSON(c.ExistingCV)
		if err != nil {
			return "", err
		}
		data["CurrentCV"] = current
		mode := "keep"
		if c.StructuralChangesAllowed() {
			mode = "allow"
		}
		for placeholder, key := range map[string]string{
			"Preference":            "tailor-preference-",
			"TitleInstruction":      "tailor-title-",
			"SuggestionInstruction": "tailor-suggestion-",
		} {
			text, err := prompts.Get(prompts.GenerationFile, key+mode)
			if err != nil {
				return "", err
			}
			data[placeholder] = text
		}
	}

	return prompts.Render(string(req.Kind), data)
}

func experienceContext(doc *types.CVData) string {
	if doc == nil || len(doc.Experience) == 0 {
		return ""
	}
	roles := make([]string, 0, len(doc.Experience))
	for _, e := range doc.Experience {
		roles = append(roles, fmt.Sprintf("%s at %s", e.JobTitle, e.Company))
	}
	text, err := prompts.Render("summary-experience-context", map[string]string{
		"Experience": strings.Join(roles, ", "),
	})
	if err != nil {
		return ""
	}
	return text
}

func currentCVJSON(doc *types.CVData) (string, error) {
	subset := tailorSubset{
		Summary:    doc.Summary,
		Skills:     make([]types.SkillEntry, 0, len(doc.Skills)),
		Experience: make([]tailorExperience, 0, len(doc.Experience)),
	}
	subset.Skills = append(subset.Skills, doc.Skills...)
	for _, e := range doc.Experience {
		subset.Experience = append(subset.Experience, tailorExperience{
			ID:               e.ID,
			JobTitle:         e.JobTitle,
			Company:          e.Company,
			Responsibilities: e.Responsibilities,
		})
	}
	data, err := json.Marshal(subset)
	if err != nil {
		return "", fmt.Errorf("failed to encode current CV: %w", err)
	}
	return string(data), nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
