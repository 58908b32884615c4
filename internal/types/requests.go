package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// GenerateRequest is the JSON body of the generation endpoint.
// Context is kept raw and decoded by the generation package, which also
// checks that the kind has the input it needs.
type GenerateRequest struct {
	GenerationType string          `json:"generationType" validate:"required"`
	UserInput      string          `json:"userInput" validate:"max=20000"`
	Context        json.RawMessage `json:"context,omitempty"`
	// Apply asks the server to merge the result into context.existingCV and return the merged document.
	Apply bool `json:"apply,omitempty"`
}

// SaveCVRequest stores a CV for the authenticated user. ID is set when updating.
type SaveCVRequest struct {
	ID        string          `json:"id,omitempty" validate:"omitempty,uuid"`
	Title     string          `json:"title,omitempty" validate:"max=200"`
	CVData    *CVData         `json:"cv_data" validate:"required"`
	ThemeData json.RawMessage `json:"theme_data,omitempty"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the SaveCVRequest using the validator.
func (r *SaveCVRequest) Validate() error {
	return validator.New().Struct(r)
}
