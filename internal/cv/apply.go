package cv

import (
	"github.com/jonathan/cv-builder/internal/types"
)

// Section names used in EntryNotFoundError.
const (
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
)

// ApplySummary returns a copy of doc with the summary replaced.
func ApplySummary(doc *types.CVData, summary string, gen IDGenerator) *types.CVData {
	out := Normalize(doc, gen)
	out.Summary = summary
	return out
}

// ApplyResponsibilities replaces the responsibilities of one experience entry.
func ApplyResponsibilities(doc *types.CVData, entryID string, list []string, gen IDGenerator) (*types.CVData, error) {
	out := Normalize(doc, gen)
	idx := out.FindExperience(entryID)
	if idx < 0 {
		return nil, &EntryNotFoundError{Section: SectionExperience, ID: entryID}
	}
	out.Experience[idx].Responsibilities = copyList(list)
	return out, nil
}

// ApplyEducationDetails replaces the details of one education entry.
func ApplyEducationDetails(doc *types.CVData, entryID string, list []string, gen IDGenerator) (*types.CVData, error) {
	out := Normalize(doc, gen)
	idx := out.FindEducation(entryID)
	if idx < 0 {
		return nil, &EntryNotFoundError{Section: SectionEducation, ID: entryID}
	}
	out.Education[idx].Details = copyList(list)
	return out, nil
}

// ApplySkillList replaces the skills of one skill category.
func ApplySkillList(doc *types.CVData, entryID string, list []string, gen IDGenerator) (*types.CVData, error) {
	out := Normalize(doc, gen)
	idx := out.FindSkill(entryID)
	if idx < 0 {
		return nil, &EntryNotFoundError{Section: SectionSkills, ID: entryID}
	}
	out.Skills[idx].Skills = copyList(list)
	return out, nil
}

// AppendExperience appends entry under a fresh ID and returns the new document and the assigned ID.
func AppendExperience(doc *types.CVData, entry types.ExperienceEntry, gen IDGenerator) (*types.CVData, string) {
	out := Normalize(doc, gen)
	ids := newIDSet(gen)
	ids.collect(out)
	added := entry.Clone()
	added.ID = ids.fresh()
	added.Responsibilities = nonNil(added.Responsibilities)
	out.Experience = append(out.Experience, added)
	return out, added.ID
}

// AppendEducation appends entry under a fresh ID and returns the new document and the assigned ID.
func AppendEducation(doc *types.CVData, entry types.EducationEntry, gen IDGenerator) (*types.CVData, string) {
	out := Normalize(doc, gen)
	ids := newIDSet(gen)
	ids.collect(out)
	added := entry.Clone()
	added.ID = ids.fresh()
	added.Details = nonNil(added.Details)
	out.Education = append(out.Education, added)
	return out, added.ID
}

// ReplaceDocument returns a normalized copy of next, discarding the current document.
func ReplaceDocument(next *types.CVData, gen IDGenerator) *types.CVData {
	return Normalize(next, gen)
}

func copyList(list []string) []string {
	return append([]string{}, list...)
}
