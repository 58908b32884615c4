package cv

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// MergeStats reports what a tailoring merge changed.
type MergeStats struct {
	PatchedExperience  int      `json:"patchedExperience"`
	SkippedIDs         []string `json:"skippedIds,omitempty"`
	AddedExperience    int      `json:"addedExperience"`
	DroppedSuggestions int      `json:"droppedSuggestions"`
}

// ApplyTailoring merges a tailoring update into a copy of doc.
//
// The summary and the skills section are replaced wholesale; skill entries
// without an ID get a fresh one. Experience patches are matched by exact ID
// and only touch the job title and responsibilities; patches for unknown IDs
// are skipped. Suggested entries are appended with fresh IDs only when
// allowStructuralChanges is true. Job titles are also only rewritten when
// allowStructuralChanges is true, and a blank updated title never overwrites
// the existing one.
func ApplyTailoring(doc *types.CVData, update *types.TailoredCVUpdate, allowStructuralChanges bool, gen IDGenerator) (*types.CVData, MergeStats) {
	out := Normalize(doc, gen)
	var stats MergeStats
	if update == nil {
		return out, stats
	}

	out.Summary = update.UpdatedSummary

	ids := newIDSet(gen)
	for _, e := range out.Experience {
		ids.mark(e.ID)
	}
	for _, e := range out.Education {
		ids.mark(e.ID)
	}
	skills := make([]types.SkillEntry, 0, len(update.UpdatedSkills))
	for _, s := range update.UpdatedSkills {
		entry := s.Clone()
		entry.ID = ids.claim(entry.ID)
		entry.Skills = nonNil(entry.Skills)
		skills = append(skills, entry)
	}
	out.Skills = skills

	for _, patch := range update.UpdatedExperience {
		idx := -1
		if strings.TrimSpace(patch.ID) != "" {
			idx = out.FindExperience(patch.ID)
		}
		if idx < 0 {
			stats.SkippedIDs = append(stats.SkippedIDs, patch.ID)
			continue
		}
		entry := &out.Experience[idx]
		if allowStructuralChanges && strings.TrimSpace(patch.UpdatedJobTitle) != "" {
			entry.JobTitle = patch.UpdatedJobTitle
		}
		if patch.Responsibilities != nil {
			entry.Responsibilities = append([]string{}, patch.Responsibilities...)
		}
		stats.PatchedExperience++
	}

	if !allowStructuralChanges {
		stats.DroppedSuggestions = len(update.SuggestedNewExperienceEntries)
		return out, stats
	}
	for _, suggested := range update.SuggestedNewExperienceEntries {
		entry := suggested.Clone()
		entry.ID = ids.fresh()
		entry.Responsibilities = nonNil(entry.Responsibilities)
		out.Experience = append(out.Experience, entry)
		stats.AddedExperience++
	}
	return out, stats
}
