package main

import (
	"os"

	cmd "github.com/arvidn/peer-ordering/cmd/swarmsim/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.NewRunCmd(),
		cmd.VersionCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
