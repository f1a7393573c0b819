package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/winserv/internal/config"
	"github.com/1broseidon/winserv/internal/tui"
)

func clientsCmd() *cobra.Command {
	var (
		addr    string
		asJSON  bool
		windows bool
	)
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Print connected clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := tui.NewHTTPSource(addr)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			clients, err := src.Clients(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(clients)
			}
			fmt.Fprintln(out, tui.RenderClients(clients, -1, time.Now()))
			if windows {
				all, err := src.Windows(ctx, 0)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, tui.RenderWindows(all))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultHTTPListen, "Server HTTP address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&windows, "windows", false, "Also print every window")
	return cmd
}

func topCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Live view of connected clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(tui.NewHTTPSource(addr), interval)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultHTTPListen, "Server HTTP address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval")
	return cmd
}
