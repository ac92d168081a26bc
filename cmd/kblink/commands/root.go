package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/kblink/internal/config"
	"github.com/OFFIS-RIT/kblink/internal/util"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
	"github.com/OFFIS-RIT/kblink/pkg/logger/console"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFiles []string
	debug    bool

	// cfg is resolved from the environment and the flags of the running command.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kblink",
	Short: "Link knowledge base identifiers by label and score relation pairs",
	Long: `kblink links the entity ids of an information extraction knowledge base
to Freebase ids by matching normalized labels against Wikidata records, then
scores labeled entity pairs against per-relation word2vec difference vectors.

Inputs may be local paths or s3://bucket/key objects, plain or gzip compressed.

Examples:
  # Build the correspondence checkpoint
  kblink match --source names.txt.gz --target wikidata.json.gz

  # Score the positive pairs of the train and test sets
  kblink score --records train.tsv,test.tsv --model freebase-vectors.bin --out scored.tsv
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		util.LoadEnv(envFiles...)
		cfg = config.FromEnv()
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}

		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug:  cfg.Debug,
			Prefix: "kblink",
		}))

		return applyFlags(cmd, &cfg)
	},
}

// Command returns the root cobra command.
func Command() *cobra.Command {
	return rootCmd
}

// Execute runs the command selected by the process arguments. An interrupt
// cancels the running pipeline.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging [DEBUG]")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(targetLabelsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
}
