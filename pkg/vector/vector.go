// Package vector gives read access to a pretrained word vector model.
//
// The scorer only needs two things from a model: whether a term is part of
// its vocabulary and the vector of a term. Both are exposed as small
// interfaces so tests can supply fixed vectors.
package vector

import (
	"fmt"
	"slices"
)

// Model resolves terms to fixed dimension vectors.
type Model interface {
	Dim() int
	Lookup(term string) ([]float32, bool)
}

// Vocabulary reports whether a term is known.
type Vocabulary interface {
	Contains(term string) bool
}

// Memory is a model held entirely in memory.
type Memory struct {
	dim     int
	vectors map[string][]float32
}

// NewMemory creates a model from the given vectors. Every vector must have
// exactly dim elements.
func NewMemory(dim int, vectors map[string][]float32) (*Memory, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid vector dimension %d", dim)
	}
	for term, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector of %q has %d dimensions, expected %d", term, len(v), dim)
		}
	}
	if vectors == nil {
		vectors = make(map[string][]float32)
	}
	return &Memory{dim: dim, vectors: vectors}, nil
}

func (m *Memory) Dim() int {
	return m.dim
}

func (m *Memory) Lookup(term string) ([]float32, bool) {
	v, ok := m.vectors[term]
	return v, ok
}

func (m *Memory) Contains(term string) bool {
	_, ok := m.vectors[term]
	return ok
}

// Len returns the number of terms held.
func (m *Memory) Len() int {
	return len(m.vectors)
}

// Terms returns the held terms in sorted order.
func (m *Memory) Terms() []string {
	terms := make([]string, 0, len(m.vectors))
	for t := range m.vectors {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// TermSet is a vocabulary without vectors.
type TermSet map[string]struct{}

// NewTermSet creates a vocabulary of the given terms.
func NewTermSet(terms ...string) TermSet {
	s := make(TermSet, len(terms))
	for _, t := range terms {
		s[t] = struct{}{}
	}
	return s
}

func (s TermSet) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Keep returns a filter accepting only terms in the set.
func (s TermSet) Keep() func(string) bool {
	return s.Contains
}
