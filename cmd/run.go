package cmd

import (
	"github.com/encodeous/vpnv4/core"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the vpnv4 agent",
	Long: `Runs the agent on the current host. The agent watches the configured feeds and rewrites
the FRR configuration fragment whenever a namespace changes. It needs write access to the output directory,
and CAP_NET_ADMIN when provision_vrfs is enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		return core.Bootstrap(configPath, logPath, verbose)
	},
	GroupID: "agent",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringP("log", "l", "", "Also write logs to this file")
}
