package commands

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/kblink/internal/config"
	"github.com/OFFIS-RIT/kblink/internal/storage"
	"github.com/OFFIS-RIT/kblink/pkg/label"
	"github.com/OFFIS-RIT/kblink/pkg/loader"
	ioloader "github.com/OFFIS-RIT/kblink/pkg/loader/io"
	s3loader "github.com/OFFIS-RIT/kblink/pkg/loader/s3"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
	"github.com/OFFIS-RIT/kblink/pkg/match"
	"github.com/OFFIS-RIT/kblink/pkg/relvec"
	"github.com/OFFIS-RIT/kblink/pkg/store"
	pgstore "github.com/OFFIS-RIT/kblink/pkg/store/pgx"
	"github.com/OFFIS-RIT/kblink/pkg/vector"

	"github.com/jackc/pgx/v5/pgxpool"
)

// runtime holds the connections shared by the commands of one invocation.
type runtime struct {
	files  *loader.Mux
	output *storage.Writer
	pool   *pgxpool.Pool
	store  store.ResultStore
}

func newRuntime(ctx context.Context, c config.Config, withStore bool) (*runtime, error) {
	rt := &runtime{
		files:  &loader.Mux{Local: ioloader.NewIOFileLoader()},
		output: storage.NewWriter(nil),
	}

	if c.S3.Enabled() {
		client, err := storage.NewS3Client(ctx, c.S3)
		if err != nil {
			return nil, err
		}
		rt.files.S3 = s3loader.NewS3FileLoaderWithClient(client)
		rt.output = storage.NewWriter(client)
		logger.Debug("S3 access configured", "region", c.S3.Region, "endpoint", c.S3.Endpoint)
	}

	if withStore && c.DatabaseURL != "" {
		if err := pgstore.Migrate(c.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := pgstore.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.pool = pool
		rt.store = pgstore.NewResultStoreWithConnection(pool)
	}
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
}

func (rt *runtime) matcher(c config.Config) (*match.Matcher, error) {
	policy, err := label.ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	return match.NewMatcher(match.NewMatcherParams{
		Files:      rt.files,
		Output:     rt.output,
		FoldCase:   c.FoldCase,
		Duplicates: policy,
	})
}

func (rt *runtime) scorer() (*relvec.Scorer, error) {
	return relvec.NewScorer(relvec.NewScorerParams{
		Files:  rt.files,
		Output: rt.output,
		Store:  rt.store,
	})
}

func matchParams(c config.Config) match.MatchParams {
	return match.MatchParams{
		SourceLabels:   c.SourceLabels,
		TargetRecords:  c.TargetRecords,
		Correspondence: c.Correspondence,
		FilterIDs:      c.FilterIDs,
	}
}

func scoreParams(c config.Config) (relvec.ScoreParams, error) {
	format, err := vector.ParseFormat(c.VectorFormat)
	if err != nil {
		return relvec.ScoreParams{}, err
	}
	return relvec.ScoreParams{
		Correspondence: c.Correspondence,
		RecordFiles:    c.RecordFiles,
		VectorModel:    c.VectorModel,
		VectorFormat:   format,
		VectorVocab:    c.VectorVocab,
		ScoresOut:      c.ScoresOut,
	}, nil
}

func withRuntime(ctx context.Context, withStore bool, fn func(rt *runtime) error) error {
	rt, err := newRuntime(ctx, cfg, withStore)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer rt.Close()
	return fn(rt)
}
