// Package types provides type definitions for structured data used throughout the cv-builder system.
package types

import "encoding/json"

// CVData is the full résumé document.
type CVData struct {
	PersonalInfo PersonalInfo      `json:"personalInfo"`
	Summary      string            `json:"summary"`
	Experience   []ExperienceEntry `json:"experience"`
	Education    []EducationEntry  `json:"education"`
	Skills       []SkillEntry      `json:"skills"`
}

// PersonalInfo holds contact details and the visibility flags that control
// which of them render in output.
type PersonalInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	LinkedIn    string `json:"linkedin"`
	GitHub      string `json:"github"`
	Portfolio   string `json:"portfolio"`
	Address     string `json:"address"`
	PortraitURL string `json:"portraitUrl"`

	ShowPortrait  bool `json:"showPortrait"`
	ShowPhone     bool `json:"showPhone"`
	ShowEmail     bool `json:"showEmail"`
	ShowLinkedIn  bool `json:"showLinkedin"`
	ShowGitHub    bool `json:"showGithub"`
	ShowPortfolio bool `json:"showPortfolio"`
	ShowAddress   bool `json:"showAddress"`
}

// ExperienceEntry is one job in the experience section.
type ExperienceEntry struct {
	ID               string   `json:"id"`
	JobTitle         string   `json:"jobTitle"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
}

// EducationEntry is one degree in the education section.
type EducationEntry struct {
	ID             string   `json:"id"`
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution"`
	Location       string   `json:"location"`
	GraduationDate string   `json:"graduationDate"`
	Details        []string `json:"details"`
}

// SkillEntry groups skills under a category.
type SkillEntry struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// TailoredCVUpdate is the structured result of tailoring a CV against a job description.
type TailoredCVUpdate struct {
	UpdatedSummary                string            `json:"updatedSummary"`
	UpdatedSkills                 []SkillEntry      `json:"updatedSkills"`
	UpdatedExperience             []ExperiencePatch `json:"updatedExperience"`
	SuggestedNewExperienceEntries []ExperienceEntry `json:"suggestedNewExperienceEntries"`
}

// ExperiencePatch targets an existing experience entry by ID.
// A nil Responsibilities leaves the entry's list untouched.
type ExperiencePatch struct {
	ID               string   `json:"id"`
	UpdatedJobTitle  string   `json:"updatedJobTitle"`
	Responsibilities []string `json:"responsibilities"`
}

// DefaultPersonalInfo returns personal info with every visibility flag at its default.
func DefaultPersonalInfo() PersonalInfo {
	return PersonalInfo{
		ShowPortrait:  false,
		ShowPhone:     true,
		ShowEmail:     true,
		ShowLinkedIn:  true,
		ShowGitHub:    true,
		ShowPortfolio: true,
		ShowAddress:   false,
	}
}

// UnmarshalJSON decodes personal info, leaving absent visibility flags at their defaults.
func (p *PersonalInfo) UnmarshalJSON(data []byte) error {
	type plain PersonalInfo
	decoded := plain(DefaultPersonalInfo())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PersonalInfo(decoded)
	return nil
}

// UnmarshalJSON decodes a document; a missing personalInfo object decodes to the defaults.
func (c *CVData) UnmarshalJSON(data []byte) error {
	type plain CVData
	decoded := plain{PersonalInfo: DefaultPersonalInfo()}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = CVData(decoded)
	return nil
}

// Clone returns a deep copy of the document.
func (c *CVData) Clone() *CVData {
	if c == nil {
		return nil
	}
	out := &CVData{
		PersonalInfo: c.PersonalInfo,
		Summary:      c.Summary,
	}
	if c.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(c.Experience))
		for i, e := range c.Experience {
			out.Experience[i] = e.Clone()
		}
	}
	if c.Education != nil {
		out.Education = make([]EducationEntry, len(c.Education))
		for i, e := range c.Education {
			out.Education[i] = e.Clone()
		}
	}
	if c.Skills != nil {
		out.Skills = make([]SkillEntry, len(c.Skills))
		for i, s := range c.Skills {
			out.Skills[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a copy of the entry that shares no slices with the original.
func (e ExperienceEntry) Clone() ExperienceEntry {
	e.Responsibilities = cloneStrings(e.Responsibilities)
	return e
}

// Clone returns a copy of the entry that shares no slices with the original.
func (e EducationEntry) Clone() EducationEntry {
	e.Details = cloneStrings(e.Details)
	return e
}

// Clone returns a copy of the entry that shares no slices with the original.
func (s SkillEntry) Clone() SkillEntry {
	s.Skills = cloneStrings(s.Skills)
	return s
}

// FindExperience returns the index of the experience entry with the given ID, or -1.
func (c *CVData) FindExperience(id string) int {
	for i := range c.Experience {
		if c.Experience[i].ID == id {
			return i
		}
	}
	return -1
}

// FindEducation returns the index of the education entry with the given ID, or -1.
func (c *CVData) FindEducation(id string) int {
	for i := range c.Education {
		if c.Education[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSkill returns the index of the skill entry with the given ID, or -1.
func (c *CVData) FindSkill(id string) int {
	for i := range c.Skills {
		if c.Skills[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
