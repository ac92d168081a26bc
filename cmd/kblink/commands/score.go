package commands

import (
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score labeled entity pairs against average relation vectors",
	Long: `Keep the unambiguous part of the correspondence checkpoint, collect the
positive pairs of the record files whose entities have a vector, average the
difference vectors per relation and write the cosine score of every pair.

Negative similarities are written as 0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.ValidateScore(); err != nil {
			return err
		}
		return withRuntime(cmd.Context(), true, func(rt *runtime) error {
			return runScore(cmd, rt)
		})
	},
}

func runScore(cmd *cobra.Command, rt *runtime) error {
	params, err := scoreParams(cfg)
	if err != nil {
		return err
	}
	s, err := rt.scorer()
	if err != nil {
		return err
	}
	_, err = s.Run(cmd.Context(), params)
	return err
}

func init() {
	addScoreFlags(scoreCmd)
	addCorrespondenceFlag(scoreCmd)
}
