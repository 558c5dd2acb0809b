package cmd

import (
	"fmt"

	"github.com/encodeous/vpnv4/core"
	"github.com/encodeous/vpnv4/frr"
	"github.com/encodeous/vpnv4/state"
	"github.com/spf13/cobra"
)

var allocCmd = &cobra.Command{
	Use:   "alloc <namespace>...",
	Short: "Prints the RD and route targets that would be allocated to the namespaces, in argument order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := state.LoadAgentConfig(configPath)
		if err != nil {
			return err
		}
		alloc := core.NewAllocator(cfg.Driver.RDBase, cfg.Driver.RTBase, cfg.Driver.MaxIdentifier)
		for _, ns := range args {
			a, err := alloc.Allocate(ns)
			if err != nil {
				return fmt.Errorf("%s: %w", ns, err)
			}
			fmt.Printf("%s\t%s\n", ns, a)
		}
		return nil
	},
	GroupID: "cfg",
}

var mergeCmd = &cobra.Command{
	Use:   "merge <base> <generated> <out>",
	Short: "Merges a rendered config into a hand written frr.conf",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return frr.MergeFiles(args[0], args[1], args[2])
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(allocCmd)
	rootCmd.AddCommand(mergeCmd)
}
