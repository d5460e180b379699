package main

import (
	"github.com/spf13/cobra"

	"github.com/godilite/ticket-qc/internal/qc"
)

func newRulesCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule set as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := qc.LoadRuleSet(root.rulesPath)
			if err != nil {
				return err
			}
			data, err := rules.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
