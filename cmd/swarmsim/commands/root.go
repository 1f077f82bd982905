package commands

import (
	"github.com/arvidn/peer-ordering/src/config"
	"github.com/spf13/cobra"
)

var _config = config.NewDefaultConfig()

// RootCmd is the root command for swarmsim
var RootCmd = &cobra.Command{
	Use:              "swarmsim",
	Short:            "swarm topology simulator",
	TraverseChildren: true,
}
