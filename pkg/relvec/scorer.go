package relvec

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kblink/pkg/checkpoint"
	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/loader"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
	"github.com/OFFIS-RIT/kblink/pkg/match"
	"github.com/OFFIS-RIT/kblink/pkg/store"
	"github.com/OFFIS-RIT/kblink/pkg/vector"
)

// Scorer derives relation vectors from labeled entity pairs and scores the
// pairs against them.
//
// A Scorer should be created using NewScorer.
type Scorer struct {
	files  loader.FileLoader
	output checkpoint.Creator
	store  store.ResultStore
}

// NewScorerParams defines the configuration of a Scorer.
//
// Store is optional; when set every run is also published to it.
type NewScorerParams struct {
	Files  loader.FileLoader
	Output checkpoint.Creator
	Store  store.ResultStore
}

// NewScorer creates a Scorer.
func NewScorer(params NewScorerParams) (*Scorer, error) {
	if params.Files == nil {
		return nil, fmt.Errorf("scorer needs a file loader")
	}
	if params.Output == nil {
		return nil, fmt.Errorf("scorer needs an output")
	}
	return &Scorer{
		files:  params.Files,
		output: params.Output,
		store:  params.Store,
	}, nil
}

// ScoreParams names the inputs and output of one scorer run.
type ScoreParams struct {
	Correspondence string
	RecordFiles    []string
	VectorModel    string
	VectorFormat   vector.Format
	// VectorVocab optionally names a vocabulary file that replaces the
	// model's own vocabulary for pair selection.
	VectorVocab string
	ScoresOut   string
}

// ScoreResult summarizes a scorer run.
type ScoreResult struct {
	Unambiguous int
	Collect     CollectStats
	Relations   int
	Lines       int
	// RunID is set when the run was published to a store.
	RunID string
}

// Run loads the correspondence, keeps its unambiguous part, and writes the
// scored positive pairs of the record files.
func (s *Scorer) Run(ctx context.Context, params ScoreParams) (ScoreResult, error) {
	start := time.Now()
	logger.Info("[Score] Starting", "correspondence", params.Correspondence, "records", len(params.RecordFiles))

	res := ScoreResult{}

	c, err := match.LoadCorrespondence(ctx, s.files, params.Correspondence)
	if err != nil {
		return res, fmt.Errorf("failed to load correspondence: %w", err)
	}
	unambiguous := FilterUnambiguous(c)
	res.Unambiguous = len(unambiguous)
	logger.Info("Filtered correspondence", "ids", len(c), "unambiguous", res.Unambiguous)

	model, err := s.loadModel(ctx, params, unambiguous)
	if err != nil {
		return res, err
	}

	var vocab vector.Vocabulary = model
	if params.VectorVocab != "" {
		if vocab, err = s.loadVocabulary(ctx, params.VectorVocab); err != nil {
			return res, err
		}
	}

	table, stats, err := CollectPositivePairs(ctx, params.RecordFiles, unambiguous, vocab, s.files)
	res.Collect = stats
	if err != nil {
		return res, fmt.Errorf("failed to collect positive pairs: %w", err)
	}

	averages, err := ComputeAverageVectors(table, unambiguous, model)
	if err != nil {
		return res, fmt.Errorf("failed to compute relation vectors: %w", err)
	}
	res.Relations = len(averages)

	scores, err := ScorePairs(table, unambiguous, model, averages)
	if err != nil {
		return res, fmt.Errorf("failed to score pairs: %w", err)
	}

	if res.Lines, err = s.writeScores(ctx, params.ScoresOut, scores); err != nil {
		return res, err
	}

	if s.store != nil {
		res.RunID, err = store.Publish(ctx, s.store, store.PublishParams{
			Run: store.Run{
				Correspondence: params.Correspondence,
				RecordFiles:    params.RecordFiles,
				VectorModel:    params.VectorModel,
				Unambiguous:    res.Unambiguous,
			},
			Vectors: averages,
			Pairs:   table,
			Scores:  scores,
		})
		if err != nil {
			return res, fmt.Errorf("failed to publish results: %w", err)
		}
	}

	logger.Info(
		"[Score] Completed",
		"output", params.ScoresOut,
		"relations", res.Relations,
		"lines", res.Lines,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// loadModel keeps only the vectors of target ids reachable through the
// unambiguous map.
func (s *Scorer) loadModel(ctx context.Context, params ScoreParams, unambiguous common.Unambiguous) (*vector.Memory, error) {
	keep := make(vector.TermSet, len(unambiguous))
	for _, target := range unambiguous {
		keep[string(target)] = struct{}{}
	}

	r, err := loader.OpenText(ctx, s.files, params.VectorModel)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	model, _, err := vector.LoadWord2Vec(ctx, r, vector.LoadOptions{
		Format: params.VectorFormat,
		Keep:   keep.Keep(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load vector model %s: %w", params.VectorModel, err)
	}
	return model, nil
}

func (s *Scorer) loadVocabulary(ctx context.Context, path string) (vector.TermSet, error) {
	r, err := loader.OpenText(ctx, s.files, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	vocab, err := vector.LoadVocabulary(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary %s: %w", path, err)
	}
	return vocab, nil
}

func (s *Scorer) writeScores(ctx context.Context, path string, scores []common.ScoredPair) (int, error) {
	w, err := s.output.Create(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := WriteScores(w, scores)
	if err != nil {
		checkpoint.Discard(w)
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return n, nil
}
