package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/types"
)

// DocumentKey is the fixed key the working document is stored under.
const DocumentKey = "aicvb_cvData"

// DocumentStore loads and saves the single working CV document.
type DocumentStore struct {
	kv     KV
	ids    cv.IDGenerator
	logger *zap.Logger
}

// NewDocumentStore wraps kv. A nil logger disables logging.
func NewDocumentStore(kv KV, ids cv.IDGenerator, logger *zap.Logger) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentStore{kv: kv, ids: ids, logger: logger}
}

// Load returns the normalized stored document. found is false when nothing is
// stored or the stored value could not be decoded; a corrupt value is removed.
// IDs assigned during normalization are written back so they stay stable.
func (s *DocumentStore) Load(ctx context.Context) (*types.CVData, bool, error) {
	data, err := s.kv.Get(ctx, DocumentKey)
	if errors.Is(err, ErrNotFound) {
		return cv.Empty(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}

	var doc types.CVData
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("discarding corrupt stored document", zap.Error(err), zap.Int("bytes", len(data)))
		if delErr := s.kv.Delete(ctx, DocumentKey); delErr != nil {
			s.logger.Warn("failed to delete corrupt document", zap.Error(delErr))
		}
		return cv.Empty(), false, nil
	}
	normalized := cv.Normalize(&doc, s.ids)
	if idsAssigned(&doc, normalized) {
		if err := s.Save(ctx, normalized); err != nil {
			return nil, false, err
		}
		s.logger.Info("stored document given entry IDs")
	}
	return normalized, true, nil
}

// idsAssigned reports whether normalization changed any entry ID.
func idsAssigned(before, after *types.CVData) bool {
	if len(before.Experience) != len(after.Experience) ||
		len(before.Education) != len(after.Education) ||
		len(before.Skills) != len(after.Skills) {
		return true
	}
	for i := range before.Experience {
		if before.Experience[i].ID != after.Experience[i].ID {
			return true
		}
	}
	for i := range before.Education {
		if before.Education[i].ID != after.Education[i].ID {
			return true
		}
	}
	for i := range before.Skills {
		if before.Skills[i].ID != after.Skills[i].ID {
			return true
		}
	}
	return false
}

// Save writes doc under DocumentKey.
func (s *DocumentStore) Save(ctx context.Context, doc *types.CVData) error {
	if doc == nil {
		return fmt.Errorf("document is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := s.kv.Set(ctx, DocumentKey, data); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Reset removes the stored document and returns a fresh empty one.
func (s *DocumentStore) Reset(ctx context.Context) (*types.CVData, error) {
	if err := s.kv.Delete(ctx, DocumentKey); err != nil {
		return nil, fmt.Errorf("failed to reset document: %w", err)
	}
	return cv.Empty(), nil
}
