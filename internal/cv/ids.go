// Package cv provides normalization, identifier assignment, and merge operations on CV documents.
package cv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/types"
)

// IDGenerator produces opaque entry identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator issues monotonically increasing identifiers with a fixed prefix.
type CounterGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewCounterGenerator creates a counter that starts at 1.
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix, next: 1}
}

// NewID returns the next identifier in sequence.
func (g *CounterGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s%d", g.prefix, g.next)
	g.next++
	return id
}

func generatorOrDefault(gen IDGenerator) IDGenerator {
	if gen == nil {
		return UUIDGenerator{}
	}
	return gen
}

// idSet tracks identifiers already in use within one document.
type idSet struct {
	gen  IDGenerator
	used map[string]struct{}
}

func newIDSet(gen IDGenerator) *idSet {
	return &idSet{gen: generatorOrDefault(gen), used: make(map[string]struct{})}
}

// collect records every non-empty identifier in the document.
func (s *idSet) collect(doc *types.CVData) {
	for _, e := range doc.Experience {
		s.mark(e.ID)
	}
	for _, e := range doc.Education {
		s.mark(e.ID)
	}
	for _, e := range doc.Skills {
		s.mark(e.ID)
	}
}

func (s *idSet) mark(id string) {
	if strings.TrimSpace(id) != "" {
		s.used[id] = struct{}{}
	}
}

// claim keeps id if it is non-empty and unused, otherwise issues a fresh one.
func (s *idSet) claim(id string) string {
	if strings.TrimSpace(id) != "" {
		if _, taken := s.used[id]; !taken {
			s.used[id] = struct{}{}
			return id
		}
	}
	return s.fresh()
}

// maxGeneratorAttempts bounds retries against a generator that keeps colliding.
const maxGeneratorAttempts = 64

func (s *idSet) fresh() string {
	for attempt := 0; ; attempt++ {
		id := uuid.NewString()
		if attempt < maxGeneratorAttempts {
			id = s.gen.NewID()
		}
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, taken := s.used[id]; taken {
			continue
		}
		s.used[id] = struct{}{}
		return id
	}
}
