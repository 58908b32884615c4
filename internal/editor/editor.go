// Package editor applies generation results to the persisted working CV document.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/generation"
	"github.com/jonathan/cv-builder/internal/storage"
	"github.com/jonathan/cv-builder/internal/types"
)

// Generator produces a typed result for a request. *generation.Dispatcher implements it.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Outcome is the result of Run.
type Outcome struct {
	Result   *generation.Result
	Document *types.CVData
	// Applied is false when the result had nowhere to go (no target entry).
	Applied bool
	Merge   *cv.MergeStats
}

// Editor owns the working document. Writes are serialized.
type Editor struct {
	generator Generator
	store     *storage.DocumentStore
	ids       cv.IDGenerator
	logger    *zap.Logger

	mu  sync.Mutex
	doc *types.CVData
}

// New creates an editor. Call Load before use to read the persisted document.
func New(generator Generator, store *storage.DocumentStore, ids cv.IDGenerator, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = cv.UUIDGenerator{}
	}
	return &Editor{
		generator: generator,
		store:     store,
		ids:       ids,
		logger:    logger,
		doc:       cv.Empty(),
	}
}

// Load reads the persisted document into memory.
func (e *Editor) Load(ctx context.Context) error {
	doc, found, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.doc = doc
	e.mu.Unlock()
	e.logger.Debug("document loaded", zap.Bool("found", found))
	return nil
}

// Document returns a copy of the current document.
func (e *Editor) Document() *types.CVData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Run generates content for req and merges it into the document. The model is
// called without holding the lock; merge, save and swap happen under it, so a
// failure at any step leaves both the stored and the in-memory document unchanged.
func (e *Editor) Run(ctx context.Context, req generation.Request) (*Outcome, error) {
	usesDocument := req.Kind == generation.KindTailorCVToJobDescription || req.Kind == generation.KindSummary
	if req.Context.ExistingCV == nil && usesDocument {
		req.Context.ExistingCV = e.Document()
	}

	result, err := e.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, applied, stats, err := ApplyResult(e.doc, req, result, e.ids)
	if err != nil {
		return nil, err
	}
	if !applied {
		return &Outcome{Result: result, Document: e.doc.Clone()}, nil
	}
	if err := e.store.Save(ctx, next); err != nil {
		return nil, err
	}
	e.doc = next

	e.logger.Info("generation applied",
		zap.String("kind", string(req.Kind)),
		zap.Int("experience", len(next.Experience)),
		zap.Int("education", len(next.Education)),
		zap.Int("skills", len(next.Skills)))
	return &Outcome{Result: result, Document: next.Clone(), Applied: true, Merge: stats}, nil
}

// Replace normalizes doc and stores it as the working document.
func (e *Editor) Replace(ctx context.Context, doc *types.CVData) (*types.CVData, error) {
	next := cv.ReplaceDocument(doc, e.ids)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Save(ctx, next); err != nil {
		return nil, err
	}
	e.doc = next
	return next.Clone(), nil
}

// Reset discards the stored document.
func (e *Editor) Reset(ctx context.Context) (*types.CVData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, err := e.store.Reset(ctx)
	if err != nil {
		return nil, err
	}
	e.doc = doc
	e.logger.Info("document reset")
	return doc.Clone(), nil
}

// ApplyResult merges result into a copy of doc according to its kind. Section
// kinds need req.Context.TargetID; without one the result is returned unapplied.
func ApplyResult(doc *types.CVData, req generation.Request, result *generation.Result, gen cv.IDGenerator) (*types.CVData, bool, *cv.MergeStats, error) {
	if result == nil {
		return nil, false, nil, fmt.Errorf("no result to apply")
	}
	target := strings.TrimSpace(req.Context.TargetID)

	switch result.Kind {
	case generation.KindSummary:
		return cv.ApplySummary(doc, result.Text, gen), true, nil, nil

	case generation.KindExperienceResponsibilities, generation.KindEducationDetails, generation.KindSkillSuggestions:
		if target == "" {
			return nil, false, nil, nil
		}
		var (
			next *types.CVData
			err  error
		)
		switch result.Kind {
		case generation.KindExperienceResponsibilities:
			next, err = cv.ApplyResponsibilities(doc, target, result.List, gen)
		case generation.KindEducationDetails:
			next, err = cv.ApplyEducationDetails(doc, target, result.List, gen)
		default:
			next, err = cv.ApplySkillList(doc, target, result.List, gen)
		}
		if err != nil {
			return nil, false, nil, err
		}
		return next, true, nil, nil

	case generation.KindNewExperienceEntry:
		if result.Experience == nil {
			return nil, false, nil, fmt.Errorf("result has no experience entry")
		}
		next, _ := cv.AppendExperience(doc, *result.Experience, gen)
		return next, true, nil, nil

	case generation.KindNewEducationEntry:
		if result.Education == nil {
			return nil, false, nil, fmt.Errorf("result has no education entry")
		}
		next, _ := cv.AppendEducation(doc, *result.Education, gen)
		return next, true, nil, nil

	case generation.KindInitialCVFromTitle, generation.KindInitialCVFromJobDescription:
		if result.CV == nil {
			return nil, false, nil, fmt.Errorf("result has no document")
		}
		return cv.ReplaceDocument(result.CV, gen), true, nil, nil

	case generation.KindTailorCVToJobDescription:
		if result.Tailoring == nil {
			return nil, false, nil, fmt.Errorf("result has no tailoring update")
		}
		next, stats := cv.ApplyTailoring(doc, result.Tailoring, req.Context.StructuralChangesAllowed(), gen)
		return next, true, &stats, nil
	}
	return nil, false, nil, fmt.Errorf("unsupported kind %q", result.Kind)
}
