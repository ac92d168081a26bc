package relvec

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/loader"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
	"github.com/OFFIS-RIT/kblink/pkg/vector"
)

// PositiveTruth marks a record as a true instance of its relation.
const PositiveTruth = "1"

// FilterUnambiguous keeps the entries of c that map to exactly one tuple of
// exactly one target id.
func FilterUnambiguous(c common.Correspondence) common.Unambiguous {
	out := make(common.Unambiguous)
	for id, set := range c {
		if set.Len() != 1 {
			continue
		}
		for _, tuple := range set {
			if len(tuple) == 1 {
				out[id] = tuple[0]
			}
		}
	}
	return out
}

// CollectStats describes the relation records read by CollectPositivePairs.
type CollectStats struct {
	Files int
	Lines int
	// Positive counts records flagged as true.
	Positive int
	// Qualifying counts positive records whose entities both resolve to a
	// vocabulary term. Repeated records are counted every time.
	Qualifying int
	Relations  int
	Pairs      int
}

// CollectPositivePairs reads "<e1>\t<e2>\t<relation>\t<truth>" records from
// every file and keeps the positive pairs whose entities both map to a
// vocabulary term. Pairs repeated within or across files are kept once.
func CollectPositivePairs(
	ctx context.Context,
	files []string,
	unambiguous common.Unambiguous,
	vocab vector.Vocabulary,
	opener loader.FileLoader,
) (common.PairTable, CollectStats, error) {
	table := make(common.PairTable)
	stats := CollectStats{}

	resolves := func(id common.SourceID) bool {
		target, ok := unambiguous[id]
		return ok && vocab.Contains(string(target))
	}

	for _, file := range files {
		if err := collectFile(ctx, file, opener, table, &stats, resolves); err != nil {
			return nil, stats, err
		}
		stats.Files++
	}

	stats.Relations = len(table)
	stats.Pairs = table.Size()
	logger.Info(
		"Collected positive pairs",
		"files", stats.Files,
		"qualifying", stats.Qualifying,
		"pairs", stats.Pairs,
		"relations", stats.Relations,
	)
	return table, stats, nil
}

func collectFile(
	ctx context.Context,
	file string,
	opener loader.FileLoader,
	table common.PairTable,
	stats *CollectStats,
	resolves func(common.SourceID) bool,
) error {
	r, err := loader.OpenText(ctx, opener, file)
	if err != nil {
		return err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%(1<<16) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		stats.Lines++

		rec, err := parseRecord(strings.TrimSuffix(sc.Text(), "\r"))
		if err != nil {
			return &ParseError{File: file, Line: lineNo, Err: err}
		}
		if rec.truth != PositiveTruth {
			continue
		}
		stats.Positive++
		if !resolves(rec.e1) || !resolves(rec.e2) {
			continue
		}
		stats.Qualifying++
		table.Add(rec.relation, common.Pair{E1: rec.e1, E2: rec.e2})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	return nil
}

type record struct {
	e1, e2, relation common.SourceID
	truth            string
}

func parseRecord(line string) (record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return record{}, fmt.Errorf("expected 4 tab separated fields, got %d", len(fields))
	}

	var ids [3]common.SourceID
	for i, name := range []string{"entity1", "entity2", "relation"} {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return record{}, fmt.Errorf("invalid %s id %q: %w", name, fields[i], err)
		}
		ids[i] = common.SourceID(v)
	}
	return record{e1: ids[0], e2: ids[1], relation: ids[2], truth: fields[3]}, nil
}
