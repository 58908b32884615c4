package generation

import (
	"errors"
	"testing"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("responsibilities")
	require.NoError(t, err)
	assert.Equal(t, KindExperienceResponsibilities, got)

	got, err = ParseKind(" skills_suggestions ")
	require.NoError(t, err)
	assert.Equal(t, KindSkillSuggestions, got)

	_, err = ParseKind("cover_letter")
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestKind_Classification(t *testing.T) {
	assert.True(t, KindSkillSuggestions.IsList())
	assert.True(t, KindNewEducationEntry.IsEntry())
	assert.True(t, KindInitialCVFromJobDescription.IsFullCV())
	assert.True(t, KindTailorCVToJobDescription.UsesJobDescription())
	assert.False(t, KindSummary.IsList())

	assert.Equal(t, llm.TierLite, KindEducationDetails.Tier())
	assert.Equal(t, llm.TierAdvanced, KindTailorCVToJobDescription.Tier())
	assert.Equal(t, llm.TierStandard, KindNewExperienceEntry.Tier())
}

func TestParseContext(t *testing.T) {
	c, err := ParseContext(nil)
	require.NoError(t, err)
	assert.True(t, c.StructuralChangesAllowed())

	c, err = ParseContext([]byte(" null "))
	require.NoError(t, err)
	assert.Equal(t, Context{}, c)

	c, err = ParseContext([]byte(`{"jobTitle": "SRE", "targetId": "exp-1", "applyDetailedExperienceUpdates": false,
		"existingCV": {"summary": "s", "experience": [{"id": "exp-1"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "SRE", c.JobTitle)
	assert.Equal(t, "exp-1", c.TargetID)
	assert.False(t, c.StructuralChangesAllowed())
	require.NotNil(t, c.ExistingCV)
	assert.True(t, c.ExistingCV.PersonalInfo.ShowPhone)

	_, err = ParseContext([]byte(`{not json`))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "context", validationErr.Field)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("skills_suggestions", "cloud", []byte(`{"skillCategory": "Cloud"}`))
	require.NoError(t, err)
	assert.Equal(t, KindSkillSuggestions, req.Kind)
	assert.Equal(t, "Cloud", req.Context.SkillCategory)

	_, err = NewRequest("bogus", "x", nil)
	assert.Error(t, err)
}

func TestRequest_EffectiveInput(t *testing.T) {
	req := Request{Kind: KindTailorCVToJobDescription, Context: Context{JobDescription: " JD text "}}
	assert.Equal(t, "JD text", req.EffectiveInput())

	req = Request{Kind: KindSummary, Context: Context{JobDescription: "ignored"}}
	assert.Equal(t, "", req.EffectiveInput())
}

func TestBuildPrompt_EveryKind(t *testing.T) {
	for _, k := range AllKinds {
		t.Run(string(k), func(t *testing.T) {
			req := tailorRequest(nil)
			req.Kind = k
			prompt, err := BuildPrompt(req)
			require.NoError(t, err)
			assert.Contains(t, prompt, req.Input)
			assert.NotContains(t, prompt, "{{.")
		})
	}
}

func TestBuildPrompt_Defaults(t *testing.T) {
	prompt, err := BuildPrompt(Request{Kind: KindEducationDetails, Input: "honors"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Degree: N/A")
	assert.Contains(t, prompt, "Institution: N/A")

	prompt, err = BuildPrompt(Request{Kind: KindSummary, Input: "x"})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Consider the following experience")
}
