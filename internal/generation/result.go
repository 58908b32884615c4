package generation

import "github.com/jonathan/cv-builder/internal/types"

// Result holds the typed output of one generation call. Exactly one of the
// payload fields is set, according to Kind.
type Result struct {
	Kind       Kind
	Text       string
	List       []string
	Experience *types.ExperienceEntry
	Education  *types.EducationEntry
	CV         *types.CVData
	Tailoring  *types.TailoredCVUpdate
	// Fallback is true when a list was recovered from unstructured text.
	Fallback bool
}

// Data returns the payload for the kind, as it is sent over the wire.
func (r *Result) Data() any {
	switch {
	case r.Kind == KindSummary:
		return r.Text
	case r.Kind.IsList():
		return r.List
	case r.Kind == KindNewExperienceEntry:
		return r.Experience
	case r.Kind == KindNewEducationEntry:
		return r.Education
	case r.Kind.IsFullCV():
		return r.CV
	case r.Kind == KindTailorCVToJobDescription:
		return r.Tailoring
	default:
		return nil
	}
}
