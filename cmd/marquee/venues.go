package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonesanders/marquee/internal/config"
	"github.com/jasonesanders/marquee/internal/scrape"
	"github.com/jasonesanders/marquee/internal/venues"
)

func newVenuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List configured venues and whether a plugin backs them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			plugins := make(map[string]scrape.Mode)
			for _, p := range venues.All() {
				plugins[p.Slug()] = p.Mode()
			}

			for _, v := range cfg.Venues {
				state := "disabled"
				if v.Enabled {
					state = "enabled"
				}
				mode := "no plugin"
				if m, ok := plugins[v.ID]; ok {
					mode = m.String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %-10s %s\n", v.ID, state, mode, v.URL)
			}
			return nil
		},
	}
}
