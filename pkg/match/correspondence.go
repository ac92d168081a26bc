package match

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/label"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// IDFilter restricts a correspondence to a set of source ids. A nil filter
// keeps everything.
type IDFilter map[common.SourceID]struct{}

// JoinStats describes the label join of BuildCorrespondence.
type JoinStats struct {
	// Matched counts source ids with at least one matching label.
	Matched int
	// MultiLabelIDs counts source ids matched under more than one label.
	MultiLabelIDs int
	// Kept counts the ids left after the filter.
	Kept int
}

// BuildCorrespondence joins the source label map with the target label map
// on label equality. Source ids whose label has no target entry are dropped.
//
// Labels are visited in ascending order, so when several labels of one source
// id match, the target set of the greatest label is kept.
func BuildCorrespondence(
	source map[common.Label]common.SourceID,
	target map[common.Label]common.TargetSet,
	filter IDFilter,
) (common.Correspondence, JoinStats) {
	labels := make([]common.Label, 0, len(source))
	for lbl := range source {
		labels = append(labels, lbl)
	}
	slices.Sort(labels)

	out := make(common.Correspondence)
	multi := make(map[common.SourceID]struct{})
	for _, lbl := range labels {
		set, ok := target[lbl]
		if !ok {
			continue
		}
		id := source[lbl]
		if _, seen := out[id]; seen {
			multi[id] = struct{}{}
		}
		out[id] = set
	}

	stats := JoinStats{Matched: len(out), MultiLabelIDs: len(multi)}
	logger.Info("Source ids found with corresponding target ids", "count", stats.Matched)
	if stats.MultiLabelIDs > 0 {
		logger.Warn("Source ids matched under several labels", "count", stats.MultiLabelIDs)
	}

	if filter != nil {
		for id := range out {
			if _, keep := filter[id]; !keep {
				delete(out, id)
			}
		}
		logger.Info("Correspondence restricted to filter", "filter_ids", len(filter), "count", len(out))
	}
	stats.Kept = len(out)
	return out, stats
}

// Stats summarizes how ambiguous a correspondence is.
type Stats struct {
	// IDs is the number of source ids in the correspondence.
	IDs int
	// SharedLabels counts source ids whose label matched several target records.
	SharedLabels int
	// MultiIDTuples counts target records that carry more than one target id.
	MultiIDTuples int
	// Unambiguous counts source ids with exactly one tuple of exactly one id.
	Unambiguous int
}

// Summarize computes the ambiguity statistics of c.
func Summarize(c common.Correspondence) Stats {
	s := Stats{IDs: len(c)}
	for _, set := range c {
		if set.Len() > 1 {
			s.SharedLabels++
		}
		for _, tuple := range set {
			if len(tuple) > 1 {
				s.MultiIDTuples++
			}
		}
		if set.Len() == 1 {
			for _, tuple := range set {
				if len(tuple) == 1 {
					s.Unambiguous++
				}
			}
		}
	}
	return s
}

// LoadIDFilter reads one source id per line. Blank lines are skipped.
func LoadIDFilter(ctx context.Context, r io.Reader, name string) (IDFilter, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := make(IDFilter)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, &label.ParseError{File: name, Line: i + 1, Err: fmt.Errorf("invalid source id %q: %w", line, err)}
		}
		filter[common.SourceID(id)] = struct{}{}
	}
	return filter, nil
}
