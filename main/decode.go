package main

import (
	"github.com/spf13/cobra"

	"hmmkit/runner"
)

func decode(cmd *cobra.Command) error {
	r, _, err := initRunner(cmd)
	if err != nil {
		return err
	}
	report, err := r.Decode()
	if err != nil {
		return err
	}
	return runner.WriteYAML(cmd.OutOrStdout(), report)
}

func decodeCMD() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "decode the most likely state path",
		Long:  "decode the most likely state path of the configured sequence under the configured model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return decode(cmd)
		},
	}
	attachFlags(decodeCmd, []string{"config"})
	return decodeCmd
}
