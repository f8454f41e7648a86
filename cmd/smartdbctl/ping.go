package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/smartdb-go/smartdb/internal/cliui"
)

var pingCmd = &cobra.Command{
	Use:   "ping <connection-name>",
	Short: "Open a connection and report whether it succeeded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		connRes := mgr.CreateConnection(name)
		if !connRes.Ok() {
			cliui.PrintError("failed to create connection %q: %s", name, connRes.Err().Message)
			return connRes.Err()
		}
		conn := connRes.Value()
		defer conn.Close()

		if openRes := conn.Open(context.Background()); !openRes.Ok() {
			cliui.PrintError("failed to open %q: %s", name, openRes.Err().Message)
			return openRes.Err()
		}
		cliui.PrintSuccess("connection %q is reachable", name)
		return nil
	},
}
