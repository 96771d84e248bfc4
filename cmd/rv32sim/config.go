package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32sim/config"
)

func newConfigCmd() *cobra.Command {
	var (
		asYAML bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the default simulation config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if output != "" {
				return cfg.Save(output)
			}

			data, err := cfg.Marshal(asYAML)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the config to this file (.json, .yaml or .yml)")

	return cmd
}
