package main

import (
	"github.com/spf13/cobra"

	"hmmkit/common"
	"hmmkit/runner"
)

func train(cmd *cobra.Command) error {
	r, lc, err := initRunner(cmd)
	if err != nil {
		return err
	}

	method := lc.Train.Method
	if methodFlag != "" {
		method = methodFlag
	}
	m, err := common.ParseTrainMethod(method)
	if err != nil {
		return err
	}

	report, err := r.Train(m)
	if err != nil {
		return err
	}
	if err = runner.WriteYAML(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	plotPath := lc.PlotPath
	if plotFlag != "" {
		plotPath = plotFlag
	}
	if plotPath == "" {
		return nil
	}
	return r.SavePlot(plotPath)
}

func trainCMD() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train the model",
		Long:  "train the model on the configured sequence with Baum-Welch or Gibbs sampling, then decode it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return train(cmd)
		},
	}
	flagList := []string{
		"config",
		"method",
		"plot",
	}
	attachFlags(trainCmd, flagList)
	return trainCmd
}
