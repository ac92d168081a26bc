package pgx

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

type fakeBatchResults struct {
	n   int
	err error
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.n++
	return pgconn.NewCommandTag("INSERT 0 1"), b.err
}

func (b *fakeBatchResults) Query() (pgxv5.Rows, error) { return nil, errors.New("not supported") }
func (b *fakeBatchResults) QueryRow() pgxv5.Row        { return nil }
func (b *fakeBatchResults) Close() error               { return nil }

type fakeConn struct {
	execs   []execCall
	batches []*pgxv5.Batch
	copied  [][]any
	table   pgxv5.Identifier
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 2"), nil
}

func (c *fakeConn) SendBatch(_ context.Context, b *pgxv5.Batch) pgxv5.BatchResults {
	c.batches = append(c.batches, b)
	return &fakeBatchResults{}
}

func (c *fakeConn) CopyFrom(_ context.Context, table pgxv5.Identifier, _ []string, src pgxv5.CopyFromSource) (int64, error) {
	c.table = table
	for src.Next() {
		row, err := src.Values()
		if err != nil {
			return 0, err
		}
		c.copied = append(c.copied, row)
	}
	return int64(len(c.copied)), src.Err()
}

func TestCreateRunGeneratesID(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)
	s.newID = func() (string, error) { return "abc", nil }

	id, err := s.CreateRun(context.Background(), store.Run{
		Correspondence: "c.msgpack.gz",
		RecordFiles:    []string{"train.tsv", "bad\x00.tsv"},
		VectorModel:    "freebase.bin",
		Unambiguous:    3,
	})
	if err != nil || id != "abc" {
		t.Fatalf("unexpected result %q, %v", id, err)
	}
	if len(conn.execs) != 1 {
		t.Fatalf("expected one statement, got %d", len(conn.execs))
	}
	args := conn.execs[0].args
	if args[0] != "abc" || !reflect.DeepEqual(args[2], []string{"train.tsv", "bad.tsv"}) || args[4] != 3 {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestSaveScoredPairsCopiesRows(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)

	n, err := s.SaveScoredPairs(context.Background(), "run", []common.ScoredPair{
		{E1: 10, E2: 11, Relation: 5, Score: 1},
		{E1: 12, E2: 13, Relation: 5, Score: 0},
	})
	if err != nil || n != 2 {
		t.Fatalf("unexpected result %d, %v", n, err)
	}
	if conn.table[0] != "scored_pairs" {
		t.Fatalf("unexpected table %v", conn.table)
	}
	want := []any{"run", int64(5), int64(10), int64(11), 1.0}
	if !reflect.DeepEqual(conn.copied[0], want) {
		t.Fatalf("unexpected row %v", conn.copied[0])
	}
}

func TestSaveRelationVectorsBatches(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)

	vectors := common.RelationVectors{}
	pairs := common.PairTable{}
	for i := range vectorBatchSize + 1 {
		rel := common.SourceID(i)
		vectors[rel] = []float64{1, 2}
		pairs.Add(rel, common.Pair{E1: 1, E2: 2})
	}

	if err := s.SaveRelationVectors(context.Background(), "run", vectors, pairs); err != nil {
		t.Fatal(err)
	}
	if len(conn.batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(conn.batches))
	}
	if conn.batches[0].Len() != vectorBatchSize || conn.batches[1].Len() != 1 {
		t.Fatalf("unexpected batch sizes %d %d", conn.batches[0].Len(), conn.batches[1].Len())
	}
}

func TestSaveTargetLabels(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)

	n, err := s.SaveTargetLabels(context.Background(), map[common.TargetID]string{"/m/2": "b", "/m/1": "a\x00"})
	if err != nil || n != 2 {
		t.Fatalf("unexpected result %d, %v", n, err)
	}
	args := conn.execs[0].args
	if !reflect.DeepEqual(args[0], []string{"/m/1", "/m/2"}) || !reflect.DeepEqual(args[1], []string{"a", "b"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestSaveTargetLabelsMergesSanitizedIDs(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)

	labels := map[common.TargetID]string{"/m/1": "plain", "/m/1\x00": "nul", "/m/2": "b"}
	for range 20 {
		conn.execs = nil
		if _, err := s.SaveTargetLabels(context.Background(), labels); err != nil {
			t.Fatal(err)
		}
		args := conn.execs[0].args
		if !reflect.DeepEqual(args[0], []string{"/m/1", "/m/2"}) || !reflect.DeepEqual(args[1], []string{"nul", "b"}) {
			t.Fatalf("unexpected args %v", args)
		}
	}
}

func TestFailRunRecordsCause(t *testing.T) {
	conn := &fakeConn{}
	s := NewResultStoreWithConnection(conn)

	if err := s.FailRun(context.Background(), "run", errors.New("boom")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(conn.execs[0].sql, "'failed'") || conn.execs[0].args[1] != "boom" {
		t.Fatalf("unexpected call %+v", conn.execs[0])
	}
}

func TestToFloat32(t *testing.T) {
	if got := toFloat32([]float64{0.5, -2}); !reflect.DeepEqual(got, []float32{0.5, -2}) {
		t.Fatalf("unexpected vector %v", got)
	}
}
