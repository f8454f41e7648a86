package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartdb-go/smartdb/internal/cliui"
)

var execCmd = &cobra.Command{
	Use:   "exec <connection-name> <sql>",
	Short: "Execute a raw SQL statement against a named connection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, sql := args[0], args[1]
		ctx := context.Background()

		connRes := mgr.CreateConnection(name)
		if !connRes.Ok() {
			return connRes.Err()
		}
		conn := connRes.Value()
		defer conn.Close()

		if openRes := conn.Open(ctx); !openRes.Ok() {
			return openRes.Err()
		}

		res := conn.Execute(ctx, sql)
		if !res.Ok() {
			cliui.PrintError("execute failed: %s", res.Err().Message)
			return res.Err()
		}
		fmt.Printf("%d row(s) affected\n", res.Value())
		return nil
	},
}
