package main

import (
	"github.com/spf13/cobra"

	"hmmkit/runner"
)

func simulate(cmd *cobra.Command) error {
	r, _, err := initRunner(cmd)
	if err != nil {
		return err
	}
	report, err := r.Simulate(lengthFlag, seedFlag)
	if err != nil {
		return err
	}
	return runner.WriteYAML(cmd.OutOrStdout(), report)
}

func simulateCMD() *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "sample a sequence from the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return simulate(cmd)
		},
	}
	flagList := []string{
		"config",
		"length",
		"seed",
	}
	attachFlags(simulateCmd, flagList)
	return simulateCmd
}
