// Command qcscore scores ticket exports against the QC rubric.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/config"
	"github.com/godilite/ticket-qc/internal/ingest"
	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository"
	"github.com/godilite/ticket-qc/internal/service"
)

type rootFlags struct {
	rulesPath string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "qcscore",
		Short:         "Ticket quality-control scoring",
		Long:          "qcscore scores service-desk ticket exports against the thirteen-checkpoint QC rubric and reports the results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.rulesPath, "rules", os.Getenv("RULES_PATH"), "Path to a YAML rule set (defaults to the built-in rules)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(newScoreCmd(flags), newSummaryCmd(flags), newRulesCmd(flags))
	return cmd
}

func (f *rootFlags) logger() *zap.Logger {
	logger, err := config.NewLogger(&config.Config{AppEnv: "development", LogLevel: f.logLevel})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// scoreFile ingests path and runs the pipeline over it.
func scoreFile(ctx context.Context, path string, rules qc.RuleSet, workers int, logger *zap.Logger) (*service.ScoringService, *service.Batch, error) {
	scorer, err := qc.NewScorer(rules)
	if err != nil {
		return nil, nil, err
	}

	table, err := ingest.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var opts []service.Option
	if workers > 0 {
		opts = append(opts, service.WithWorkers(workers))
	}
	scoring := service.NewScoringService(repository.NewScoredTicketRepository(), scorer, logger, opts...)

	batch, err := scoring.ScoreBatch(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	return scoring, batch, nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
