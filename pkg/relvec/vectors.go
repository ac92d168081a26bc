package relvec

import (
	"fmt"
	"math"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
	"github.com/OFFIS-RIT/kblink/pkg/vector"
)

// entityVector resolves a source entity to the vector of its target id.
func entityVector(id common.SourceID, unambiguous common.Unambiguous, model vector.Model) ([]float32, error) {
	target, ok := unambiguous[id]
	if !ok {
		return nil, fmt.Errorf("%w: entity %d has no unambiguous target id", ErrMissingVector, id)
	}
	v, ok := model.Lookup(string(target))
	if !ok {
		return nil, fmt.Errorf("%w: entity %d (%s)", ErrMissingVector, id, target)
	}
	if len(v) != model.Dim() {
		return nil, fmt.Errorf("%w: %s has %d dimensions, model has %d", ErrDimensionMismatch, target, len(v), model.Dim())
	}
	return v, nil
}

// difference returns v(t(e1)) - v(t(e2)) in float64.
func difference(p common.Pair, unambiguous common.Unambiguous, model vector.Model) ([]float64, error) {
	a, err := entityVector(p.E1, unambiguous, model)
	if err != nil {
		return nil, err
	}
	b, err := entityVector(p.E2, unambiguous, model)
	if err != nil {
		return nil, err
	}

	d := make([]float64, len(a))
	for i := range a {
		d[i] = float64(a[i]) - float64(b[i])
	}
	return d, nil
}

// ComputeAverageVectors averages the difference vector of every pair of a
// relation.
func ComputeAverageVectors(table common.PairTable, unambiguous common.Unambiguous, model vector.Model) (common.RelationVectors, error) {
	out := make(common.RelationVectors, len(table))
	for _, rel := range table.Relations() {
		pairs := table.Pairs(rel)
		if len(pairs) == 0 {
			return nil, fmt.Errorf("%w: relation %d", ErrEmptyRelation, rel)
		}

		sum := make([]float64, model.Dim())
		for _, p := range pairs {
			d, err := difference(p, unambiguous, model)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel, err)
			}
			for i := range sum {
				sum[i] += d[i]
			}
		}

		n := float64(len(pairs))
		for i := range sum {
			sum[i] /= n
		}
		out[rel] = sum
	}

	logger.Info("Computed average relation vectors", "relations", len(out))
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// length.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / math.Sqrt(normA*normB)
	// Rounding can push the ratio slightly outside [-1, 1].
	return max(-1, min(1, sim)), nil
}

// ScorePairs scores every pair of the table against its relation's average
// vector. Negative similarities are reported as 0. Results are ordered by
// relation, then by pair.
func ScorePairs(
	table common.PairTable,
	unambiguous common.Unambiguous,
	model vector.Model,
	averages common.RelationVectors,
) ([]common.ScoredPair, error) {
	out := make([]common.ScoredPair, 0, table.Size())
	for _, rel := range table.Relations() {
		avg, ok := averages[rel]
		if !ok {
			return nil, fmt.Errorf("%w: relation %d has no average vector", ErrEmptyRelation, rel)
		}
		for _, p := range table.Pairs(rel) {
			d, err := difference(p, unambiguous, model)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel, err)
			}
			sim, err := Cosine(d, avg)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel, err)
			}
			out = append(out, common.ScoredPair{
				E1:       p.E1,
				E2:       p.E2,
				Relation: rel,
				Score:    max(0, sim),
			})
		}
	}
	return out, nil
}
