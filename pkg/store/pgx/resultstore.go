package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const (
	vectorBatchSize = 500
	labelBatchSize  = 5000
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
	CopyFrom(ctx context.Context, tableName pgxv5.Identifier, columnNames []string, rowSrc pgxv5.CopyFromSource) (int64, error)
}

// ResultStore implements store.ResultStore on PostgreSQL with pgvector.
type ResultStore struct {
	conn  pgxIConn
	newID func() (string, error)
}

var _ store.ResultStore = (*ResultStore)(nil)

// NewResultStoreWithConnection creates a ResultStore on an existing connection.
func NewResultStoreWithConnection(conn pgxIConn) *ResultStore {
	return &ResultStore{
		conn:  conn,
		newID: func() (string, error) { return gonanoid.New() },
	}
}

// Connect opens a connection pool that understands the vector type.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func (s *ResultStore) CreateRun(ctx context.Context, run store.Run) (string, error) {
	id := run.ID
	if id == "" {
		var err error
		if id, err = s.newID(); err != nil {
			return "", fmt.Errorf("failed to generate run id: %w", err)
		}
	}

	files := make([]string, len(run.RecordFiles))
	for i, f := range run.RecordFiles {
		files[i] = store.SanitizeText(f)
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO scoring_runs (id, correspondence, record_files, vector_model, unambiguous)
		VALUES ($1, $2, $3, $4, $5)`,
		id,
		store.SanitizeText(run.Correspondence),
		files,
		store.SanitizeText(run.VectorModel),
		run.Unambiguous,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *ResultStore) SaveRelationVectors(ctx context.Context, runID string, vectors common.RelationVectors, pairs common.PairTable) error {
	rels := relationIDs(vectors)
	return store.ChunkRange(len(rels), vectorBatchSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, rel := range rels[start:end] {
			batch.Queue(`
				INSERT INTO relation_vectors (run_id, relation_id, pairs, embedding)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (run_id, relation_id) DO UPDATE
				SET pairs = EXCLUDED.pairs, embedding = EXCLUDED.embedding`,
				runID, int64(rel), len(pairs[rel]), pgvector.NewVector(toFloat32(vectors[rel])),
			)
		}

		br := s.conn.SendBatch(ctx, batch)
		for range end - start {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	})
}

func (s *ResultStore) SaveScoredPairs(ctx context.Context, runID string, scores []common.ScoredPair) (int64, error) {
	return s.conn.CopyFrom(
		ctx,
		pgxv5.Identifier{"scored_pairs"},
		[]string{"run_id", "relation_id", "entity1", "entity2", "score"},
		pgxv5.CopyFromSlice(len(scores), func(i int) ([]any, error) {
			sp := scores[i]
			return []any{runID, int64(sp.Relation), int64(sp.E1), int64(sp.E2), sp.Score}, nil
		}),
	)
}

func (s *ResultStore) CompleteRun(ctx context.Context, runID string, relations, pairs int) error {
	_, err := s.conn.Exec(ctx, `
		UPDATE scoring_runs
		SET status = 'completed', relations = $2, pairs = $3, completed_at = now()
		WHERE id = $1`,
		runID, relations, pairs,
	)
	return err
}

func (s *ResultStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = store.SanitizeText(cause.Error())
	}
	_, err := s.conn.Exec(ctx, `
		UPDATE scoring_runs
		SET status = 'failed', error = $2, completed_at = now()
		WHERE id = $1`,
		runID, msg,
	)
	return err
}

// SaveTargetLabels upserts the target id to label map.
func (s *ResultStore) SaveTargetLabels(ctx context.Context, labels map[common.TargetID]string) (int64, error) {
	ids, names := labelColumns(labels)

	var total int64
	err := store.ChunkRange(len(ids), labelBatchSize, func(start, end int) error {
		tag, err := s.conn.Exec(ctx, `
			INSERT INTO target_labels (target_id, label)
			SELECT * FROM unnest($1::text[], $2::text[])
			ON CONFLICT (target_id) DO UPDATE
			SET label = EXCLUDED.label, updated_at = now()`,
			ids[start:end], names[start:end],
		)
		if err != nil {
			return err
		}
		total += tag.RowsAffected()
		return nil
	})
	return total, err
}
