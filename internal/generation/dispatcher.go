package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
	embedded "github.com/jonathan/cv-builder/schemas"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 60 * time.Second

// PlaceholderName is set on generated CVs that carry no name.
const PlaceholderName = "Your Name (Update Me!)"

// PlaceholderJobDescriptionTitle is used when no title could be extracted from a job description.
const PlaceholderJobDescriptionTitle = "Job Title (from JD)"

// Dispatcher sends one request per call to the LLM and parses the typed result.
// It never retries and never caches.
type Dispatcher struct {
	client  llm.Client
	ids     cv.IDGenerator
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithIDGenerator sets the generator for entry IDs.
func WithIDGenerator(gen cv.IDGenerator) Option {
	return func(disp *Dispatcher) {
		if gen != nil {
			disp.ids = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher over client.
func NewDispatcher(client llm.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:  client,
		ids:     cv.UUIDGenerator{},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Generate validates req, calls the LLM once, and maps the response to a Result.
//
// Errors are *ValidationError (nothing was sent), *ExternalServiceError (the
// call failed or timed out), or *MalformedResponseError (the response could not
// be parsed for an entry, document, or tailoring kind). List kinds never fail
// on a bad body; they fall back to ParseList.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt for %s: %w", req.Kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	tier := req.Kind.Tier()
	log := d.logger.With(zap.String("kind", string(req.Kind)), zap.String("model", d.client.GetModel(tier)))
	start := time.Now()

	var result *Result
	switch {
	case req.Kind == KindSummary:
		result, err = d.generateSummary(ctx, prompt, tier)
	case req.Kind.IsList():
		result, err = d.generateList(ctx, req.Kind, prompt, tier)
	case req.Kind == KindNewExperienceEntry:
		result, err = d.generateExperience(ctx, prompt, tier)
	case req.Kind == KindNewEducationEntry:
		result, err = d.generateEducation(ctx, prompt, tier)
	case req.Kind.IsFullCV():
		result, err = d.generateCV(ctx, req, prompt, tier)
	case req.Kind == KindTailorCVToJobDescription:
		result, err = d.generateTailoring(ctx, req, prompt, tier)
	default:
		return nil, &ValidationError{Field: "generationType", Message: fmt.Sprintf("unsupported generation type %q", req.Kind)}
	}

	if err != nil {
		log.Warn("generation failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, err
	}
	if result.Fallback {
		log.Warn("structured output unparseable, used list fallback", zap.Int("items", len(result.List)))
	}
	log.Info("generation complete", zap.Duration("duration", time.Since(start)))
	return result, nil
}

func (d *Dispatcher) generateSummary(ctx context.Context, prompt string, tier llm.ModelTier) (*Result, error) {
	text, err := d.client.GenerateContent(ctx, prompt, tier)
	if errors.Is(err, llm.ErrEmptyResponse) {
		return nil, &MalformedResponseError{Kind: KindSummary, Cause: err}
	}
	if err != nil {
		return nil, d.externalError(ctx, KindSummary, err)
	}
	text = strings.TrimSpace(llm.StripCodeFence(text))
	if text == "" {
		return nil, &MalformedResponseError{Kind: KindSummary, Raw: text, Cause: llm.ErrEmptyResponse}
	}
	return &Result{Kind: KindSummary, Text: text}, nil
}

func (d *Dispatcher) generateList(ctx context.Context, kind Kind, prompt string, tier llm.ModelTier) (*Result, error) {
	raw, err := d.client.GenerateStructured(ctx, prompt, stringListSchema, tier)
	if errors.Is(err, llm.ErrEmptyResponse) {
		return &Result{Kind: kind, List: []string{}}, nil
	}
	if err != nil {
		return nil, d.externalError(ctx, kind, err)
	}
	list, fallback := ParseList(raw)
	return &Result{Kind: kind, List: list, Fallback: fallback}, nil
}

func (d *Dispatcher) generateExperience(ctx context.Context, prompt string, tier llm.ModelTier) (*Result, error) {
	raw, err := d.client.GenerateStructured(ctx, prompt, experienceEntrySchema, tier)
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		return nil, d.externalError(ctx, KindNewExperienceEntry, err)
	}

	var entry types.ExperienceEntry
	if err := decodeStrict(raw, embedded.ExperienceEntry, &entry); err != nil {
		return nil, &MalformedResponseError{Kind: KindNewExperienceEntry, Raw: raw, Cause: err}
	}
	entry.ID = d.ids.NewID()
	if entry.Responsibilities == nil {
		entry.Responsibilities = []string{}
	}
	return &Result{Kind: KindNewExperienceEntry, Experience: &entry}, nil
}

func (d *Dispatcher) generateEducation(ctx context.Context, prompt string, tier llm.ModelTier) (*Result, error) {
	raw, err := d.client.GenerateStructured(ctx, prompt, educationEntrySchema, tier)
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		return nil, d.externalError(ctx, KindNewEducationEntry, err)
	}

	var entry types.EducationEntry
	if err := decodeStrict(raw, embedded.EducationEntry, &entry); err != nil {
		return nil, &MalformedResponseError{Kind: KindNewEducationEntry, Raw: raw, Cause: err}
	}
	entry.ID = d.ids.NewID()
	if entry.Details == nil {
		entry.Details = []string{}
	}
	return &Result{Kind: KindNewEducationEntry, Education: &entry}, nil
}

func (d *Dispatcher) generateCV(ctx context.Context, req Request, prompt string, tier llm.ModelTier) (*Result, error) {
	raw, err := d.client.GenerateJSON(ctx, prompt, tier)
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		return nil, d.externalError(ctx, req.Kind, err)
	}

	var doc types.CVData
	if err := decodeStrict(raw, embedded.CVData, &doc); err != nil {
		return nil, &MalformedResponseError{Kind: req.Kind, Raw: raw, Cause: err}
	}

	fallbackTitle := PlaceholderJobDescriptionTitle
	if req.Kind == KindInitialCVFromTitle {
		fallbackTitle = req.EffectiveInput()
	}
	doc.PersonalInfo = cv.NormalizePersonalInfo(doc.PersonalInfo, fallbackTitle)
	if strings.TrimSpace(doc.PersonalInfo.Name) == "" {
		doc.PersonalInfo.Name = PlaceholderName
	}

	// Every generated entry gets a locally assigned ID.
	for i := range doc.Experience {
		doc.Experience[i].ID = ""
	}
	for i := range doc.Education {
		doc.Education[i].ID = ""
	}
	for i := range doc.Skills {
		doc.Skills[i].ID = ""
	}
	return &Result{Kind: req.Kind, CV: cv.Normalize(&doc, d.ids)}, nil
}

func (d *Dispatcher) generateTailoring(ctx context.Context, req Request, prompt string, tier llm.ModelTier) (*Result, error) {
	raw, err := d.client.GenerateJSON(ctx, prompt, tier)
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		return nil, d.externalError(ctx, req.Kind, err)
	}

	var update types.TailoredCVUpdate
	if err := decodeStrict(raw, embedded.TailoredUpdate, &update); err != nil {
		return nil, &MalformedResponseError{Kind: req.Kind, Raw: raw, Cause: err}
	}

	for i := range update.UpdatedSkills {
		if strings.TrimSpace(update.UpdatedSkills[i].ID) == "" {
			update.UpdatedSkills[i].ID = d.ids.NewID()
		}
	}
	if !req.Context.StructuralChangesAllowed() && len(update.SuggestedNewExperienceEntries) > 0 {
		d.logger.Warn("dropping suggested experience entries; structural changes are disallowed",
			zap.Int("count", len(update.SuggestedNewExperienceEntries)))
		update.SuggestedNewExperienceEntries = nil
	}
	return &Result{Kind: req.Kind, Tailoring: &update}, nil
}

// externalError maps a client failure to an ExternalServiceError. A timeout of
// the dispatcher's own deadline is reported as such.
func (d *Dispatcher) externalError(ctx context.Context, kind Kind, err error) error {
	status := llm.AsStatusError(err)
	msg := status.Message
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = fmt.Sprintf("generation timed out after %s", d.timeout)
	}
	return &ExternalServiceError{Kind: kind, StatusCode: status.StatusCode, Message: msg, Cause: err}
}

// decodeStrict validates the response against a schema and decodes it into out.
func decodeStrict(raw, schemaName string, out any) error {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return errors.New("empty response")
	}
	if err := schemas.Validate(schemaName, []byte(cleaned)); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("response does not match schema: %s", validationErr.Summary())
		}
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
