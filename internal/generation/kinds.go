// Package generation dispatches typed CV content generation requests to the LLM
// and maps its responses back to typed results.
package generation

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/llm"
)

// Kind identifies one generation operation.
type Kind string

// Generation kinds.
const (
	KindSummary                     Kind = "summary"
	KindExperienceResponsibilities  Kind = "experience_responsibilities"
	KindEducationDetails            Kind = "education_details"
	KindSkillSuggestions            Kind = "skill_suggestions"
	KindNewExperienceEntry          Kind = "new_experience_entry"
	KindNewEducationEntry           Kind = "new_education_entry"
	KindInitialCVFromTitle          Kind = "initial_cv_from_title"
	KindInitialCVFromJobDescription Kind = "initial_cv_from_job_description"
	KindTailorCVToJobDescription    Kind = "tailor_cv_to_job_description"
)

// AllKinds lists every supported kind in a stable order.
var AllKinds = []Kind{
	KindSummary,
	KindExperienceResponsibilities,
	KindEducationDetails,
	KindSkillSuggestions,
	KindNewExperienceEntry,
	KindNewEducationEntry,
	KindInitialCVFromTitle,
	KindInitialCVFromJobDescription,
	KindTailorCVToJobDescription,
}

// legacyKinds maps section names used by older clients.
var legacyKinds = map[string]Kind{
	"responsibilities":   KindExperienceResponsibilities,
	"details":            KindEducationDetails,
	"skills_suggestions": KindSkillSuggestions,
}

// ParseKind resolves a kind name, accepting legacy aliases.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	for _, k := range AllKinds {
		if string(k) == name {
			return k, nil
		}
	}
	if k, ok := legacyKinds[name]; ok {
		return k, nil
	}
	return "", &ValidationError{Field: "generationType", Message: fmt.Sprintf("unsupported generation type %q", name)}
}

// IsList reports whether the kind produces a list of strings.
func (k Kind) IsList() bool {
	return k == KindExperienceResponsibilities || k == KindEducationDetails || k == KindSkillSuggestions
}

// IsEntry reports whether the kind produces a single experience or education entry.
func (k Kind) IsEntry() bool {
	return k == KindNewExperienceEntry || k == KindNewEducationEntry
}

// IsFullCV reports whether the kind produces a whole document.
func (k Kind) IsFullCV() bool {
	return k == KindInitialCVFromTitle || k == KindInitialCVFromJobDescription
}

// UsesJobDescription reports whether the input is a job description.
func (k Kind) UsesJobDescription() bool {
	return k == KindInitialCVFromJobDescription || k == KindTailorCVToJobDescription
}

// Tier returns the model tier used for the kind.
func (k Kind) Tier() llm.ModelTier {
	switch {
	case k.IsList():
		return llm.TierLite
	case k == KindTailorCVToJobDescription:
		return llm.TierAdvanced
	default:
		return llm.TierStandard
	}
}
