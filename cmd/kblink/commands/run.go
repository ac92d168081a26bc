package commands

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match labels, then score pairs",
	Long: `Run the matcher and the scorer in sequence. The scorer reads the
correspondence checkpoint the matcher has just written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.ValidateMatch(); err != nil {
			return err
		}
		if err := cfg.ValidateScore(); err != nil {
			return err
		}
		return withRuntime(cmd.Context(), true, func(rt *runtime) error {
			if err := runMatch(cmd, rt); err != nil {
				return err
			}
			return runScore(cmd, rt)
		})
	},
}

func init() {
	addMatchFlags(runCmd)
	addScoreFlags(runCmd)
	addCorrespondenceFlag(runCmd)
}
