package commands

import (
	"fmt"

	"github.com/OFFIS-RIT/kblink/internal/config"

	"github.com/spf13/cobra"
)

// stringFlags maps flag names to the config field they override.
func stringFlags(c *config.Config) map[string]*string {
	return map[string]*string{
		"source":           &c.SourceLabels,
		"target":           &c.TargetRecords,
		"correspondence":   &c.Correspondence,
		"target-id-labels": &c.TargetIDLabels,
		"duplicates":       &c.DuplicatePolicy,
		"filter":           &c.FilterIDs,
		"model":            &c.VectorModel,
		"format":           &c.VectorFormat,
		"vocab":            &c.VectorVocab,
		"out":              &c.ScoresOut,
		"database-url":     &c.DatabaseURL,
	}
}

// applyFlags copies every flag set on the command line over the value taken
// from the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	fs := cmd.Flags()
	for name, dst := range stringFlags(c) {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", name, err)
		}
		*dst = v
	}

	if fs.Changed("fold-case") {
		v, err := fs.GetBool("fold-case")
		if err != nil {
			return fmt.Errorf("failed to read --fold-case: %w", err)
		}
		c.FoldCase = v
	}
	if fs.Changed("records") {
		v, err := fs.GetStringSlice("records")
		if err != nil {
			return fmt.Errorf("failed to read --records: %w", err)
		}
		c.RecordFiles = v
	}
	return nil
}

func addMatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", "", "source id\\tlabel file [KBLINK_SOURCE_LABELS]")
	f.String("target", "", "target JSON lines record file [KBLINK_TARGET_RECORDS]")
	f.String("duplicates", "", "duplicate source label policy: last, first or fail [KBLINK_DUPLICATE_POLICY]")
	f.Bool("fold-case", false, "lowercase target names before normalization [KBLINK_FOLD_CASE]")
	f.String("filter", "", "optional file of source ids to keep [KBLINK_FILTER_IDS]")
}

func addScoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("records", nil, "labeled relation record files [KBLINK_RECORD_FILES]")
	f.String("model", "", "word2vec model [KBLINK_VECTOR_MODEL]")
	f.String("format", "", "model format: binary or text [KBLINK_VECTOR_FORMAT]")
	f.String("vocab", "", "optional vocabulary file [KBLINK_VECTOR_VOCAB]")
	f.String("out", "", "scored pairs output [KBLINK_SCORES_OUT]")
	f.String("database-url", "", "publish results to this PostgreSQL database [DATABASE_URL]")
}

func addCorrespondenceFlag(cmd *cobra.Command) {
	cmd.Flags().String("correspondence", "", "correspondence checkpoint [KBLINK_CORRESPONDENCE]")
}
