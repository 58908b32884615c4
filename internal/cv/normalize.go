package cv

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Empty returns the new-CV default document.
func Empty() *types.CVData {
	return &types.CVData{
		PersonalInfo: types.DefaultPersonalInfo(),
		Experience:   []types.ExperienceEntry{},
		Education:    []types.EducationEntry{},
		Skills:       []types.SkillEntry{},
	}
}

// Normalize returns a fully shaped copy of doc: every section and inner list is
// non-nil and every entry carries a non-empty ID that is unique in the document.
// Existing unique IDs are kept; a repeated ID is replaced on its later occurrences.
func Normalize(doc *types.CVData, gen IDGenerator) *types.CVData {
	if doc == nil {
		return Empty()
	}
	out := doc.Clone()
	ensureShape(out)

	ids := newIDSet(gen)
	for i := range out.Experience {
		out.Experience[i].ID = ids.claim(out.Experience[i].ID)
	}
	for i := range out.Education {
		out.Education[i].ID = ids.claim(out.Education[i].ID)
	}
	for i := range out.Skills {
		out.Skills[i].ID = ids.claim(out.Skills[i].ID)
	}
	return out
}

// NormalizePersonalInfo fills an empty title with fallbackTitle. Applying it twice is a no-op.
func NormalizePersonalInfo(info types.PersonalInfo, fallbackTitle string) types.PersonalInfo {
	if strings.TrimSpace(info.Title) == "" && fallbackTitle != "" {
		info.Title = fallbackTitle
	}
	return info
}

// IsNormalized reports whether doc is fully shaped with unique, non-empty IDs.
func IsNormalized(doc *types.CVData) bool {
	if doc == nil || doc.Experience == nil || doc.Education == nil || doc.Skills == nil {
		return false
	}
	seen := make(map[string]struct{})
	check := func(id string) bool {
		if strings.TrimSpace(id) == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		return true
	}
	for _, e := range doc.Experience {
		if !check(e.ID) || e.Responsibilities == nil {
			return false
		}
	}
	for _, e := range doc.Education {
		if !check(e.ID) || e.Details == nil {
			return false
		}
	}
	for _, s := range doc.Skills {
		if !check(s.ID) || s.Skills == nil {
			return false
		}
	}
	return true
}

func ensureShape(doc *types.CVData) {
	if doc.Experience == nil {
		doc.Experience = []types.ExperienceEntry{}
	}
	if doc.Education == nil {
		doc.Education = []types.EducationEntry{}
	}
	if doc.Skills == nil {
		doc.Skills = []types.SkillEntry{}
	}
	for i := range doc.Experience {
		doc.Experience[i].Responsibilities = nonNil(doc.Experience[i].Responsibilities)
	}
	for i := range doc.Education {
		doc.Education[i].Details = nonNil(doc.Education[i].Details)
	}
	for i := range doc.Skills {
		doc.Skills[i].Skills = nonNil(doc.Skills[i].Skills)
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
