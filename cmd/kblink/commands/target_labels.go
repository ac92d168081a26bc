package commands

import (
	"github.com/OFFIS-RIT/kblink/pkg/logger"

	"github.com/spf13/cobra"
)

var targetLabelsCmd = &cobra.Command{
	Use:   "target-labels",
	Short: "Build the target id to label checkpoint",
	Long: `Map every Freebase id of the target records to the English label of its
record and write the map as a checkpoint. With a database configured the map
is also upserted into the target_labels table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.ValidateTargetLabels(); err != nil {
			return err
		}
		return withRuntime(cmd.Context(), true, func(rt *runtime) error {
			m, err := rt.matcher(cfg)
			if err != nil {
				return err
			}
			labels, _, err := m.TargetIDLabels(cmd.Context(), cfg.TargetRecords, cfg.TargetIDLabels)
			if err != nil {
				return err
			}

			if rt.store == nil {
				return nil
			}
			n, err := rt.store.SaveTargetLabels(cmd.Context(), labels)
			if err != nil {
				return err
			}
			logger.Info("Published target labels", "rows", n)
			return nil
		})
	},
}

func init() {
	f := targetLabelsCmd.Flags()
	f.String("target", "", "target JSON lines record file [KBLINK_TARGET_RECORDS]")
	f.String("target-id-labels", "", "target id label checkpoint [KBLINK_TARGET_ID_LABELS]")
	f.String("database-url", "", "publish labels to this PostgreSQL database [DATABASE_URL]")
}
