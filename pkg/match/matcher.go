package match

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kblink/pkg/checkpoint"
	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/label"
	"github.com/OFFIS-RIT/kblink/pkg/loader"
	"github.com/OFFIS-RIT/kblink/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Matcher links source ids to target ids by label.
//
// A Matcher should be created using NewMatcher.
type Matcher struct {
	files      loader.FileLoader
	output     checkpoint.Creator
	normalize  label.Normalizer
	duplicates label.DuplicatePolicy
}

// NewMatcherParams defines the configuration of a Matcher.
//
// Files opens the label inputs, Output creates checkpoints. FoldCase
// lowercases target names before normalization. Duplicates decides which id a
// repeated source label keeps.
type NewMatcherParams struct {
	Files      loader.FileLoader
	Output     checkpoint.Creator
	FoldCase   bool
	Duplicates label.DuplicatePolicy
}

// NewMatcher creates a Matcher.
func NewMatcher(params NewMatcherParams) (*Matcher, error) {
	if params.Files == nil {
		return nil, fmt.Errorf("matcher needs a file loader")
	}
	normalize := label.Normalize
	if params.FoldCase {
		normalize = label.NormalizeFold
	}
	return &Matcher{
		files:      params.Files,
		output:     params.Output,
		normalize:  normalize,
		duplicates: params.Duplicates,
	}, nil
}

// MatchParams names the inputs of one matcher run.
type MatchParams struct {
	SourceLabels  string
	TargetRecords string
	// Correspondence is where Run writes the checkpoint.
	Correspondence string
	// FilterIDs optionally names a file of source ids to keep.
	FilterIDs string
}

// MatchResult is the outcome of a matcher run.
type MatchResult struct {
	Correspondence common.Correspondence
	Source         label.SourceStats
	Target         label.TargetStats
	Join           JoinStats
	Stats          Stats
}

// Match loads both label files and joins them. The two files are read
// concurrently; they share no state until the join.
func (m *Matcher) Match(ctx context.Context, params MatchParams) (MatchResult, error) {
	var (
		res    MatchResult
		source map[common.Label]common.SourceID
		target map[common.Label]common.TargetSet
		filter IDFilter
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := loader.OpenText(gCtx, m.files, params.SourceLabels)
		if err != nil {
			return err
		}
		defer r.Close()

		source, res.Source, err = label.LoadSourceLabels(gCtx, r, label.SourceOptions{
			Name:       params.SourceLabels,
			Duplicates: m.duplicates,
		})
		if err != nil {
			return fmt.Errorf("failed to load source labels: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		r, err := loader.OpenText(gCtx, m.files, params.TargetRecords)
		if err != nil {
			return err
		}
		defer r.Close()

		target, res.Target, err = label.LoadTargetLabels(gCtx, r, label.TargetOptions{
			Name:      params.TargetRecords,
			Normalize: m.normalize,
		})
		if err != nil {
			return fmt.Errorf("failed to load target labels: %w", err)
		}
		return nil
	})
	if params.FilterIDs != "" {
		eg.Go(func() error {
			r, err := loader.OpenText(gCtx, m.files, params.FilterIDs)
			if err != nil {
				return err
			}
			defer r.Close()

			filter, err = LoadIDFilter(gCtx, r, params.FilterIDs)
			if err != nil {
				return fmt.Errorf("failed to load id filter: %w", err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return MatchResult{}, err
	}

	res.Correspondence, res.Join = BuildCorrespondence(source, target, filter)
	res.Stats = Summarize(res.Correspondence)
	return res, nil
}

// Run matches and writes the correspondence checkpoint.
func (m *Matcher) Run(ctx context.Context, params MatchParams) (MatchResult, error) {
	start := time.Now()
	logger.Info("[Match] Starting", "source", params.SourceLabels, "target", params.TargetRecords)

	res, err := m.Match(ctx, params)
	if err != nil {
		return MatchResult{}, err
	}

	if m.output == nil {
		return MatchResult{}, fmt.Errorf("matcher has no checkpoint output")
	}
	if err := checkpoint.SaveFile(ctx, m.output, params.Correspondence, checkpoint.KindCorrespondence, res.Correspondence); err != nil {
		return MatchResult{}, fmt.Errorf("failed to save correspondence: %w", err)
	}

	logger.Info(
		"[Match] Completed",
		"checkpoint", params.Correspondence,
		"ids", res.Stats.IDs,
		"unambiguous", res.Stats.Unambiguous,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// TargetIDLabels builds the target id to label map of a record file and
// writes it as a checkpoint to out.
func (m *Matcher) TargetIDLabels(ctx context.Context, records, out string) (map[common.TargetID]string, label.TargetIDStats, error) {
	r, err := loader.OpenText(ctx, m.files, records)
	if err != nil {
		return nil, label.TargetIDStats{}, err
	}
	defer r.Close()

	labels, stats, err := label.LoadTargetIDLabels(ctx, r, records)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load target id labels: %w", err)
	}
	if m.output == nil {
		return nil, stats, fmt.Errorf("matcher has no checkpoint output")
	}
	if err := checkpoint.SaveFile(ctx, m.output, out, checkpoint.KindTargetIDLabels, labels); err != nil {
		return nil, stats, fmt.Errorf("failed to save target id labels: %w", err)
	}
	return labels, stats, nil
}

// LoadCorrespondence reads a correspondence checkpoint.
func LoadCorrespondence(ctx context.Context, files loader.FileLoader, path string) (common.Correspondence, error) {
	var c common.Correspondence
	if err := checkpoint.LoadFile(ctx, files, path, checkpoint.KindCorrespondence, &c); err != nil {
		return nil, err
	}
	return c, nil
}
