package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/export"
	"github.com/godilite/ticket-qc/internal/kafka"
	"github.com/godilite/ticket-qc/internal/qc"
)

type scoreFlags struct {
	input        string
	output       string
	workers      int
	kafkaBrokers []string
	kafkaTopic   string
}

func newScoreCmd(root *rootFlags) *cobra.Command {
	flags := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a ticket export and write the augmented CSV",
		Long:  "Reads a ticket CSV export, scores every row on the thirteen QC checkpoints and writes the input columns followed by the derived metrics and scores.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Path to the ticket CSV export (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Path to the scored CSV to write (required)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Scoring goroutines (defaults to GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&flags.kafkaBrokers, "kafka-brokers", nil, "Kafka brokers to publish score records to")
	cmd.Flags().StringVar(&flags.kafkaTopic, "kafka-topic", "", "Kafka topic for score records")

	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Sprintf("failed to mark output flag as required: %v", err))
	}
	cmd.MarkFlagsRequiredTogether("kafka-brokers", "kafka-topic")

	return cmd
}

func runScore(cmd *cobra.Command, root *rootFlags, flags *scoreFlags) error {
	logger := root.logger()
	defer func() { _ = logger.Sync() }()

	rules, err := qc.LoadRuleSet(root.rulesPath)
	if err != nil {
		return err
	}

	_, batch, err := scoreFile(cmd.Context(), flags.input, rules, flags.workers, logger)
	if err != nil {
		return err
	}

	if err := export.WriteFile(flags.output, batch.Columns, batch.Tickets); err != nil {
		return err
	}

	if len(flags.kafkaBrokers) > 0 {
		producer := kafka.NewProducer(flags.kafkaBrokers, flags.kafkaTopic, logger)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close error", zap.Error(err))
			}
		}()

		records := export.Records(batch.RunID, batch.Tickets, rules.Thresholds.PassPercent)
		if err := producer.PublishScores(cmd.Context(), batch.RunID, records); err != nil {
			return fmt.Errorf("publish scores: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scored %d tickets (run %s) -> %s\n", len(batch.Tickets), batch.RunID, flags.output)
	return nil
}
