package generation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Request is one generation call.
type Request struct {
	Kind    Kind
	Input   string
	Context Context
}

// Context carries the optional, kind-specific inputs of a request.
type Context struct {
	JobTitle      string        `json:"jobTitle,omitempty"`
	Company       string        `json:"company,omitempty"`
	Degree        string        `json:"degree,omitempty"`
	Institution   string        `json:"institution,omitempty"`
	SkillCategory string        `json:"skillCategory,omitempty"`
	ExistingCV    *types.CVData `json:"existingCV,omitempty"`
	// JobDescription is accepted in place of Input for job description kinds.
	JobDescription string `json:"jobDescription,omitempty"`
	// JobURL is resolved to a job description by the transport before dispatch.
	JobURL string `json:"jobUrl,omitempty"`
	// TargetID names the entry a section-level result is merged into.
	TargetID string `json:"targetId,omitempty"`
	// AllowStructuralChanges lets tailoring rename job titles and add entries. Nil means true.
	AllowStructuralChanges *bool `json:"applyDetailedExperienceUpdates,omitempty"`
}

// StructuralChangesAllowed resolves AllowStructuralChanges with its default.
func (c Context) StructuralChangesAllowed() bool {
	return c.AllowStructuralChanges == nil || *c.AllowStructuralChanges
}

// ParseContext decodes the JSON-encoded context of a transport request.
// Empty input and "null" yield a zero Context.
func ParseContext(raw []byte) (Context, error) {
	var c Context
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return c, nil
	}
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return Context{}, &ValidationError{Field: "context", Message: "invalid JSON: " + err.Error()}
	}
	return c, nil
}

// NewRequest builds a request from transport parameters.
func NewRequest(kind, input string, rawContext []byte) (Request, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Request{}, err
	}
	c, err := ParseContext(rawContext)
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: k, Input: input, Context: c}, nil
}

// EffectiveInput returns the input text, falling back to the context job
// description for kinds that take one.
func (r Request) EffectiveInput() string {
	input := strings.TrimSpace(r.Input)
	if input == "" && r.Kind.UsesJobDescription() {
		input = strings.TrimSpace(r.Context.JobDescription)
	}
	return input
}

// Validate checks the request before any network call.
func (r Request) Validate() error {
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if r.EffectiveInput() == "" {
		msg := "input is required"
		switch {
		case r.Kind == KindInitialCVFromTitle:
			msg = "job title is required"
		case r.Kind.UsesJobDescription():
			msg = "job description is required"
		}
		return &ValidationError{Field: "userInput", Message: msg}
	}
	if r.Kind == KindTailorCVToJobDescription && r.Context.ExistingCV == nil {
		return &ValidationError{Field: "context.existingCV", Message: "an existing CV is required for tailoring"}
	}
	return nil
}
