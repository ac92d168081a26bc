// Package store publishes pipeline results to a queryable store.
//
// Publishing is optional: the scored pairs file is the primary output, the
// store only mirrors it together with the relation vectors of the run.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// Run describes one scorer run.
type Run struct {
	ID             string
	Correspondence string
	RecordFiles    []string
	VectorModel    string
	Unambiguous    int
}

// ResultStore persists scorer and matcher results.
type ResultStore interface {
	CreateRun(ctx context.Context, run Run) (string, error)
	SaveRelationVectors(ctx context.Context, runID string, vectors common.RelationVectors, pairs common.PairTable) error
	SaveScoredPairs(ctx context.Context, runID string, scores []common.ScoredPair) (int64, error)
	CompleteRun(ctx context.Context, runID string, relations, pairs int) error
	FailRun(ctx context.Context, runID string, cause error) error

	SaveTargetLabels(ctx context.Context, labels map[common.TargetID]string) (int64, error)
}

// PublishParams holds the results of one scorer run.
type PublishParams struct {
	Run     Run
	Vectors common.RelationVectors
	Pairs   common.PairTable
	Scores  []common.ScoredPair
}

// Publish writes a complete scorer run. The run is marked failed when any
// step after its creation fails.
func Publish(ctx context.Context, s ResultStore, params PublishParams) (string, error) {
	runID, err := s.CreateRun(ctx, params.Run)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	fail := func(err error) (string, error) {
		if ferr := s.FailRun(ctx, runID, err); ferr != nil {
			logger.Error("Failed to mark run as failed", "run", runID, "err", ferr)
		}
		return runID, err
	}

	if err := s.SaveRelationVectors(ctx, runID, params.Vectors, params.Pairs); err != nil {
		return fail(fmt.Errorf("failed to save relation vectors: %w", err))
	}
	n, err := s.SaveScoredPairs(ctx, runID, params.Scores)
	if err != nil {
		return fail(fmt.Errorf("failed to save scored pairs: %w", err))
	}
	if err := s.CompleteRun(ctx, runID, len(params.Vectors), int(n)); err != nil {
		return fail(fmt.Errorf("failed to complete run: %w", err))
	}

	logger.Info("Published scoring run", "run", runID, "relations", len(params.Vectors), "pairs", n)
	return runID, nil
}

// ChunkRange calls fn for consecutive [start, end) windows of at most
// chunkSize elements.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeText drops invalid UTF-8 and NUL bytes, which PostgreSQL text
// columns reject.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}
	return strings.ReplaceAll(strings.ToValidUTF8(value, ""), "\x00", "")
}
