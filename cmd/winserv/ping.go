package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/runtimepath"
)

func pingCmd() *cobra.Command {
	var socket string
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Connect, greet and print the assigned client id",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runtimepath.ResolveSocket(socket)
			if err != nil {
				return err
			}
			start := time.Now()
			cl, err := ipc.Dial(path, ipc.WithTimeout(5*time.Second), ipc.WithAutoPong())
			if err != nil {
				return err
			}
			defer cl.Close()

			resp, err := cl.Greet()
			if err != nil {
				return fmt.Errorf("greet failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client %d  screen %s  theme %q  (%s)\n",
				resp.ClientID, resp.ScreenRect, resp.SystemTheme, time.Since(start).Round(time.Microsecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&socket, "socket", "", "Server socket path (default: $WINSERV_SOCKET or <runtime dir>/winserv.sock)")
	return cmd
}
