package cmd

import (
	"fmt"
	"strings"

	"github.com/encodeous/vpnv4/core"
	"github.com/spf13/cobra"
)

func ctlCommand(use, short string, args cobra.PositionalArgs) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		Run: func(cmd *cobra.Command, args []string) {
			result, err := core.IPCCommand(socketPath, strings.Join(append([]string{name}, args...), " "))
			if err != nil {
				fmt.Println("Error:", err.Error())
				return
			}
			fmt.Print(result)
		},
		GroupID: "ctl",
	}
}

func init() {
	inspectCmd := ctlCommand("inspect", "Inspects the tenants and drivers of a running agent", cobra.NoArgs)
	inspectCmd.Aliases = []string{"i"}
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(ctlCommand("config", "Prints the last rendered config of a running agent", cobra.NoArgs))
	rootCmd.AddCommand(ctlCommand("sync", "Forces a running agent to re-render", cobra.NoArgs))
	rootCmd.AddCommand(ctlCommand("expose <ip|cidr> <namespace>", "Advertises an address or subnet in a namespace", cobra.ExactArgs(2)))
	rootCmd.AddCommand(ctlCommand("withdraw <ip|cidr> [namespace]", "Withdraws an exposed address or subnet", cobra.RangeArgs(1, 2)))
}
