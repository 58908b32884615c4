package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/generation"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/types"
)

// ajaxActions are the action names accepted by the form endpoint. An empty
// action is accepted too.
var ajaxActions = map[string]generation.Kind{
	"ai_cv_generate_content":          "",
	"aicvb_generate_section_content":  "",
	"gcb_generate_content":            "",
	"aicvb_generate_initial_cv":       generation.KindInitialCVFromTitle,
	"aicvb_generate_initial_cv_by_jd": generation.KindInitialCVFromJobDescription,
}

// appliedResult is the data of a generation response when apply was requested.
type appliedResult struct {
	Result  any            `json:"result"`
	CV      *types.CVData  `json:"cv"`
	Applied bool           `json:"applied"`
	Merge   *cv.MergeStats `json:"merge,omitempty"`
}

// handleGenerate handles POST /api/v1/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.generate(r, req.GenerationType, req.UserInput, req.Context, req.Apply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, data)
}

// handleAjax handles the form-encoded POST /ajax endpoint used by the browser plugin.
func (s *Server) handleAjax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid form data"})
		return
	}

	action := strings.TrimSpace(r.FormValue("action"))
	defaultKind, ok := ajaxActions[action]
	if action != "" && !ok {
		s.writeError(w, r, &ErrValidation{Field: "action", Message: "unknown action " + strconv.Quote(action)})
		return
	}

	kind := firstNonEmpty(r.FormValue("sectionType"), r.FormValue("generationType"), string(defaultKind))
	if kind == "" {
		s.writeError(w, r, &ErrValidation{Field: "sectionType", Message: "missing required parameter"})
		return
	}
	input := firstNonEmpty(r.FormValue("userInput"), r.FormValue("prompt"))
	if len(input) > 20000 {
		s.writeError(w, r, &ErrValidation{Field: "userInput", Message: "must be at most 20000 characters"})
		return
	}
	apply, _ := strconv.ParseBool(r.FormValue("apply"))

	data, err := s.generate(r, kind, input, []byte(r.FormValue("context")), apply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, data)
}

// generate builds and runs one generation request. With apply set the result is
// merged into context.existingCV (or an empty document) and the merged document returned.
func (s *Server) generate(r *http.Request, kind, input string, rawContext []byte, apply bool) (any, error) {
	ctx := r.Context()

	req, err := generation.NewRequest(kind, input, rawContext)
	if err != nil {
		return nil, err
	}
	if err := s.resolveJobURL(ctx, &req); err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordUsage(ctx, r, req.Kind)

	if !apply {
		return result.Data(), nil
	}

	base := req.Context.ExistingCV
	if base == nil {
		base = cv.Empty()
	}
	merged, applied, stats, err := editor.ApplyResult(base, req, result, s.ids)
	if err != nil {
		return nil, err
	}
	if !applied {
		merged = cv.Normalize(base, s.ids)
	}
	return appliedResult{Result: result.Data(), CV: merged, Applied: applied, Merge: stats}, nil
}

// resolveJobURL fetches context.jobUrl when a job description kind has no text input.
func (s *Server) resolveJobURL(ctx context.Context, req *generation.Request) error {
	url := strings.TrimSpace(req.Context.JobURL)
	if url == "" || !req.Kind.UsesJobDescription() || req.EffectiveInput() != "" {
		return nil
	}
	if s.jobs == nil {
		return &ErrValidation{Field: "context.jobUrl", Message: "fetching job postings is not enabled"}
	}
	text, err := s.jobs.FetchJobDescription(ctx, url)
	if err != nil {
		return &JobFetchError{URL: url, Cause: err}
	}
	req.Context.JobDescription = text
	return nil
}

// recordUsage stores one usage row. Failures are logged and otherwise ignored.
func (s *Server) recordUsage(ctx context.Context, r *http.Request, kind generation.Kind) {
	if s.db == nil {
		return
	}
	rec := db.UsageRecord{IPAddress: clientIP(r), GenerationType: string(kind)}
	if userID, ok := middleware.UserID(ctx); ok {
		rec.UserID = &userID
	}
	if err := s.db.RecordUsage(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("failed to record usage", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
