package cmd

import (
	"os"

	"github.com/encodeous/vpnv4/state"
	"github.com/spf13/cobra"
)

var (
	configPath = state.DefaultConfigPath
	socketPath = state.DefaultControlSocket
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vpnv4",
	Short: "VPNv4 tenant VRF agent for FRR",
	Long: `vpnv4 allocates a route distinguisher and route targets for every tenant namespace
and keeps an FRR configuration fragment exporting each tenant VRF over BGP VPNv4 up to date.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "agent",
		Title: "Agent Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "ctl",
		Title: "Control Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cfg",
		Title: "Config Tools",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "agent config, .yaml or .toml")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", socketPath, "control socket of a running agent")
}
