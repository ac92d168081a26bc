package label

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// targetRecord is one line of the target knowledge record file, a Wikidata
// entity reduced to its English names and Freebase identifiers.
type targetRecord struct {
	ID            string         `json:"id"`
	Label         *string        `json:"en_label"`
	Aliases       []string       `json:"en_aliases"`
	FreebaseIDs   []string       `json:"freebase_ids"`
	WikipediaPage *wikipediaPage `json:"en_wikipedia_page"`
}

type wikipediaPage struct {
	Title *string `json:"title"`
	URL   string  `json:"url"`
}

func (r *targetRecord) tuple() common.TargetTuple {
	t := make(common.TargetTuple, len(r.FreebaseIDs))
	for i, id := range r.FreebaseIDs {
		t[i] = common.TargetID(id)
	}
	return t
}

// names returns every name the record is known by: its label, each alias
// and its Wikipedia page title, in that order.
func (r *targetRecord) names() []string {
	names := make([]string, 0, len(r.Aliases)+2)
	if r.Label != nil {
		names = append(names, *r.Label)
	}
	names = append(names, r.Aliases...)
	if r.WikipediaPage != nil && r.WikipediaPage.Title != nil {
		names = append(names, *r.WikipediaPage.Title)
	}
	return names
}

func decodeTargetRecords(ctx context.Context, r io.Reader, name string, fn func(rec *targetRecord) error) (int, error) {
	records := 0
	err := scanLines(ctx, r, func(lineNo int, line string) error {
		var rec targetRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("invalid target record: %w", err)}
		}
		records++
		return fn(&rec)
	})
	return records, err
}

// TargetOptions configures LoadTargetLabels.
type TargetOptions struct {
	Name string
	// Normalize defaults to Normalize.
	Normalize Normalizer
}

// TargetStats describes a loaded target record file.
type TargetStats struct {
	Records int
	// Labels is the number of distinct normalized labels.
	Labels int
	// Names counts every label, alias and page title read.
	Names int
}

// LoadTargetLabels maps the normalized label, aliases and Wikipedia page
// title of every target record to the record's tuple of target ids.
// Labels shared by several records collect all of their tuples.
func LoadTargetLabels(ctx context.Context, r io.Reader, opts TargetOptions) (map[common.Label]common.TargetSet, TargetStats, error) {
	normalize := opts.Normalize
	if normalize == nil {
		normalize = Normalize
	}

	labels := make(map[common.Label]common.TargetSet)
	stats := TargetStats{}

	records, err := decodeTargetRecords(ctx, r, opts.Name, func(rec *targetRecord) error {
		tuple := rec.tuple()
		for _, n := range rec.names() {
			stats.Names++
			lbl := normalize(n)
			set, ok := labels[lbl]
			if !ok {
				set = make(common.TargetSet, 1)
				labels[lbl] = set
			}
			set.Add(tuple)
		}
		return nil
	})
	stats.Records = records
	if err != nil {
		return nil, stats, err
	}

	stats.Labels = len(labels)
	logger.Info("Loaded target labels", "file", opts.Name, "records", stats.Records, "labels", stats.Labels)

	return labels, stats, nil
}

// TargetIDStats describes a target id to label map.
type TargetIDStats struct {
	Records int
	IDs     int
	// Unlabeled counts records without an English label; their ids are skipped.
	Unlabeled int
}

// LoadTargetIDLabels maps every target id to the English label of the
// record carrying it. When an id appears on several records the last one wins.
func LoadTargetIDLabels(ctx context.Context, r io.Reader, name string) (map[common.TargetID]string, TargetIDStats, error) {
	labels := make(map[common.TargetID]string)
	stats := TargetIDStats{}

	records, err := decodeTargetRecords(ctx, r, name, func(rec *targetRecord) error {
		if rec.Label == nil {
			stats.Unlabeled++
			return nil
		}
		for _, id := range rec.FreebaseIDs {
			labels[common.TargetID(id)] = *rec.Label
		}
		return nil
	})
	stats.Records = records
	if err != nil {
		return nil, stats, err
	}

	stats.IDs = len(labels)
	logger.Info("Target id to label correspondence created", "file", name, "ids", stats.IDs, "unlabeled_records", stats.Unlabeled)

	return labels, stats, nil
}
