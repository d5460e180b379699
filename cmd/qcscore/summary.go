package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/godilite/ticket-qc/internal/qc"
)

func newSummaryCmd(root *rootFlags) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs, checkpoint averages and agent summary for an export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, root, input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the ticket CSV export (required)")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	return cmd
}

func runSummary(cmd *cobra.Command, root *rootFlags, input string) error {
	logger := root.logger()
	defer func() { _ = logger.Sync() }()

	rules, err := qc.LoadRuleSet(root.rulesPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	scoring, batch, err := scoreFile(ctx, input, rules, 0, logger)
	if err != nil {
		return err
	}

	var all time.Time
	kpis, err := scoring.GetKPIs(ctx, all, all)
	if err != nil {
		return err
	}
	checkpoints, err := scoring.GetAggregatedCheckpointScores(ctx, all, all)
	if err != nil {
		return err
	}
	agents, err := scoring.GetAgentSummary(ctx, all, all)
	if err != nil {
		return err
	}

	mttr := kpis.MedianMTTR.Format()
	if mttr == "" {
		mttr = "n/a"
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Run\t%s\n", batch.RunID)
	fmt.Fprintf(w, "Tickets\t%d\n", kpis.TicketCount)
	fmt.Fprintf(w, "Mean QC %%\t%.1f\n", kpis.MeanPercent)
	fmt.Fprintf(w, "Pass rate %%\t%.1f\n", kpis.PassRate)
	fmt.Fprintf(w, "Reopen rate %%\t%.1f\n", kpis.ReopenRate)
	fmt.Fprintf(w, "Median MTTR (h)\t%s\n", mttr)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "CHECKPOINT\tLABEL\tMEAN")
	for _, cp := range checkpoints {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", cp.CheckpointID, cp.Label, cp.OverallScore)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "AGENT\tTICKETS\tMEAN %")
	for _, a := range agents {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", a.Agent, a.TicketCount, a.MeanPercent)
	}
	return w.Flush()
}
