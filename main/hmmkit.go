package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hmmkit/common"
	"hmmkit/core/config"
	"hmmkit/runner"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag string
	methodFlag  string
	plotFlag    string
	lengthFlag  int
	seedFlag    uint64
)

func init() {
	resetFlags()
}

// Explicitly define a method to facilitate tests
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "",
		"hmmkit config path, default hmmkit_config.yaml under $HMMKIT_CFG_PATH")
	flags.StringVarP(&methodFlag, "method", "m", "",
		fmt.Sprintf("training method, %s or %s, overrides train.method", common.METHOD_EM, common.METHOD_GIBBS))
	flags.StringVarP(&plotFlag, "plot", "p", "",
		"write the log-likelihood plot to this file, overrides output.plot")
	flags.IntVarP(&lengthFlag, "length", "l", 100,
		"length of the simulated sequence")
	flags.Uint64VarP(&seedFlag, "seed", "s", 1,
		"seed of the simulation")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name()))
		}
	}
}

// initRunner reads the config of cmd and initializes a runner on it.
func initRunner(cmd *cobra.Command) (*runner.Runner, *config.LocalConfig, error) {
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	r := &runner.Runner{}
	if err = r.Init(lc); err != nil {
		return nil, nil, err
	}
	return r, lc, nil
}

var mainCmd = &cobra.Command{Use: "hmmkit"}

func main() {
	mainCmd.AddCommand(trainCMD())
	mainCmd.AddCommand(decodeCMD())
	mainCmd.AddCommand(simulateCMD())

	err := mainCmd.Execute()
	_ = common.GetLogger(common.MODULE_CLI).Sync()
	if err != nil {
		os.Exit(1)
	}
}
