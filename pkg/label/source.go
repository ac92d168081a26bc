package label

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// DuplicatePolicy decides which source id a label keeps when it occurs on
// more than one line.
type DuplicatePolicy int

const (
	// DuplicateKeepLast lets the later line overwrite the earlier one.
	DuplicateKeepLast DuplicatePolicy = iota
	// DuplicateKeepFirst ignores later lines for a label already seen.
	DuplicateKeepFirst
	// DuplicateFail aborts when a label is seen with a different id.
	DuplicateFail
)

// ParseDuplicatePolicy maps "last", "first" and "fail" to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "last":
		return DuplicateKeepLast, nil
	case "first":
		return DuplicateKeepFirst, nil
	case "fail":
		return DuplicateFail, nil
	}
	return 0, fmt.Errorf("unknown duplicate policy %q", s)
}

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateKeepFirst:
		return "first"
	case DuplicateFail:
		return "fail"
	default:
		return "last"
	}
}

// SourceOptions configures LoadSourceLabels.
type SourceOptions struct {
	// Name identifies the input in errors and log lines.
	Name       string
	Duplicates DuplicatePolicy
}

// SourceStats describes a loaded source label file.
type SourceStats struct {
	Lines int
	// Labels is the number of distinct labels in the result.
	Labels int
	// Duplicates counts lines whose label had already been seen.
	Duplicates int
}

// LoadSourceLabels reads "<id>\t<label>" lines into a label to id map.
// Labels are taken verbatim; they are expected to be normalized already.
func LoadSourceLabels(ctx context.Context, r io.Reader, opts SourceOptions) (map[common.Label]common.SourceID, SourceStats, error) {
	labels := make(map[common.Label]common.SourceID)
	stats := SourceStats{}

	err := scanLines(ctx, r, func(lineNo int, line string) error {
		stats.Lines++

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return &ParseError{File: opts.Name, Line: lineNo, Err: fmt.Errorf("expected 2 tab separated fields, got %d", len(fields))}
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return &ParseError{File: opts.Name, Line: lineNo, Err: fmt.Errorf("invalid source id %q: %w", fields[0], err)}
		}
		lbl := common.Label(fields[1])

		prev, seen := labels[lbl]
		if seen {
			stats.Duplicates++
			logger.Debug("Duplicate source label", "label", lbl, "previous", prev, "id", id)
			switch opts.Duplicates {
			case DuplicateKeepFirst:
				return nil
			case DuplicateFail:
				if prev != common.SourceID(id) {
					return &ParseError{File: opts.Name, Line: lineNo, Err: fmt.Errorf("%w: %q is %d and %d", ErrDuplicateLabel, lbl, prev, id)}
				}
			}
		}
		labels[lbl] = common.SourceID(id)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Labels = len(labels)
	if stats.Duplicates > 0 {
		logger.Warn("Duplicate source labels detected", "file", opts.Name, "count", stats.Duplicates, "policy", opts.Duplicates)
	}
	logger.Info("Loaded source labels", "file", opts.Name, "labels", stats.Labels)

	return labels, stats, nil
}
