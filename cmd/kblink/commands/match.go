package commands

import (
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Link source ids to target ids by normalized label",
	Long: `Join the source id\tlabel file with the labels, aliases and Wikipedia page
titles of the target records and write the correspondence checkpoint.

Source ids whose label has no target record are dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.ValidateMatch(); err != nil {
			return err
		}
		return withRuntime(cmd.Context(), false, func(rt *runtime) error {
			return runMatch(cmd, rt)
		})
	},
}

func runMatch(cmd *cobra.Command, rt *runtime) error {
	m, err := rt.matcher(cfg)
	if err != nil {
		return err
	}
	_, err = m.Run(cmd.Context(), matchParams(cfg))
	return err
}

func init() {
	addMatchFlags(matchCmd)
	addCorrespondenceFlag(matchCmd)
}
