package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type memoryEdge struct {
	relType string
	node    string
}

// MemoryDriver is an in-process graph implementing the same recommendation
// algorithm as RecommendationQuery. It backs unit tests and the "memory"
// database driver for local development.
type MemoryDriver struct {
	mu        sync.RWMutex
	specimens map[string]struct{}
	outgoing  map[string][]memoryEdge // specimen -> attribute
	incoming  map[string][]memoryEdge // attribute -> specimen
	closed    bool
}

// NewMemoryDriver creates an empty in-memory graph.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		specimens: make(map[string]struct{}),
		outgoing:  make(map[string][]memoryEdge),
		incoming:  make(map[string][]memoryEdge),
	}
}

// AddSpecimen registers a specimen node with no relationships.
func (m *MemoryDriver) AddSpecimen(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specimens[name] = struct{}{}
}

// AddRelationship links a specimen to an attribute node. Relationship types
// outside RecommendationRelationshipTypes are stored but never traversed.
func (m *MemoryDriver) AddRelationship(specimen, relType, attribute string) error {
	if strings.TrimSpace(specimen) == "" || strings.TrimSpace(attribute) == "" {
		return fmt.Errorf("specimen and attribute names are required")
	}
	if strings.TrimSpace(relType) == "" {
		return fmt.Errorf("relationship type is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.specimens[specimen] = struct{}{}
	m.outgoing[specimen] = append(m.outgoing[specimen], memoryEdge{relType: relType, node: attribute})
	m.incoming[attribute] = append(m.incoming[attribute], memoryEdge{relType: relType, node: specimen})
	return nil
}

// Recommend implements GraphDriver.
func (m *MemoryDriver) Recommend(ctx context.Context, specimenName string, limit int) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrDriverClosed
	}
	if _, ok := m.specimens[specimenName]; !ok {
		return []Recommendation{}, nil
	}

	attributes := make(map[string]struct{})
	for _, e := range m.outgoing[specimenName] {
		if IsRecommendationRelationship(e.relType) {
			attributes[e.node] = struct{}{}
		}
	}

	scores := make(map[string]int64)
	for attribute := range attributes {
		counted := make(map[string]struct{})
		for _, e := range m.incoming[attribute] {
			if e.node == specimenName || !IsRecommendationRelationship(e.relType) {
				continue
			}
			if _, ok := counted[e.node]; ok {
				continue
			}
			counted[e.node] = struct{}{}
			scores[e.node]++
		}
	}

	recs := make([]Recommendation, 0, len(scores))
	for name, score := range scores {
		recs = append(recs, Recommendation{Name: name, Score: score})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Name < recs[j].Name
	})

	if limit = normalizeLimit(limit); len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// VerifyConnectivity implements GraphDriver.
func (m *MemoryDriver) VerifyConnectivity(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrDriverClosed
	}
	return ctx.Err()
}

// Provider implements GraphDriver.
func (m *MemoryDriver) Provider() GraphProvider {
	return GraphProviderMemory
}

// Close implements GraphDriver.
func (m *MemoryDriver) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
