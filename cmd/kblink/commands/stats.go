package commands

import (
	"fmt"

	"github.com/OFFIS-RIT/kblink/pkg/match"
	"github.com/OFFIS-RIT/kblink/pkg/relvec"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize how ambiguous a correspondence checkpoint is",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.ValidateStats(); err != nil {
			return err
		}
		return withRuntime(cmd.Context(), false, func(rt *runtime) error {
			c, err := match.LoadCorrespondence(cmd.Context(), rt.files, cfg.Correspondence)
			if err != nil {
				return err
			}

			s := match.Summarize(c)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ids\t%d\n", s.IDs)
			fmt.Fprintf(out, "shared_labels\t%d\n", s.SharedLabels)
			fmt.Fprintf(out, "multi_id_tuples\t%d\n", s.MultiIDTuples)
			fmt.Fprintf(out, "unambiguous\t%d\n", len(relvec.FilterUnambiguous(c)))
			return nil
		})
	},
}

func init() {
	addCorrespondenceFlag(statsCmd)
}
