package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/encodeous/vpnv4/core"
	"github.com/encodeous/vpnv4/feed"
	"github.com/encodeous/vpnv4/frr"
	"github.com/encodeous/vpnv4/state"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <tenants file>",
	Short: "Renders the FRR configuration for a tenants file without running the agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := state.LoadAgentConfig(configPath)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		desired, err := feed.ParseTenants(data)
		if err != nil {
			return err
		}
		tenants, err := buildTenants(cfg.Driver, desired)
		if err != nil {
			return err
		}

		d := cfg.Driver
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			d.OutputDir = out
		}
		renderer := frr.NewRenderer(d.GlobalCfg, d.OutputDir, d.IncludeGlobals)
		if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
			fmt.Print(renderer.Text(tenants))
			return nil
		}
		res, err := renderer.Render(tenants)
		if err != nil {
			return err
		}
		fmt.Printf("rendered %d tenants to %s\n", len(tenants), res.OutputPath)

		base, _ := cmd.Flags().GetString("base")
		merged, _ := cmd.Flags().GetString("merged")
		if base != "" {
			if merged == "" {
				return fmt.Errorf("--merged is required with --base")
			}
			if err = frr.MergeFiles(base, res.OutputPath, merged); err != nil {
				return err
			}
			fmt.Printf("merged %s into %s\n", base, merged)
		}
		return nil
	},
	GroupID: "cfg",
}

// buildTenants allocates every namespace in sorted order, the same order a fresh agent would see them from a file feed
func buildTenants(cfg state.DriverCfg, desired map[string][]string) ([]state.TenantContext, error) {
	alloc := core.NewAllocator(cfg.RDBase, cfg.RTBase, cfg.MaxIdentifier)
	tenants := make([]state.TenantContext, 0, len(desired))
	for _, ns := range slices.Sorted(maps.Keys(desired)) {
		if len(desired[ns]) == 0 && !cfg.KeepEmptyVrf() {
			continue
		}
		if err := state.NamespaceValidator(ns); err != nil {
			return nil, err
		}
		a, err := alloc.Allocate(ns)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, state.TenantContext{
			Namespace:          ns,
			VRF:                state.NewVRFDefinition(ns, a),
			AdvertisedPrefixes: desired[ns],
		})
	}
	return tenants, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("out", "o", "", "output directory, overrides output_dir")
	renderCmd.Flags().Bool("stdout", false, "print the rendered config instead of writing it")
	renderCmd.Flags().String("base", "", "hand written frr.conf to merge the rendered config into")
	renderCmd.Flags().String("merged", "", "where to write the merged config")
}
