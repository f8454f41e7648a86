package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/smartdb-go/smartdb/internal/cliui"
	"github.com/smartdb-go/smartdb/poolmetrics"
)

var metricsAddr string

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics <connection-name>",
	Short: "Create (or reuse) a pool and serve its metrics for Prometheus to scrape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		res := mgr.CreatePool(name, nil)
		if !res.Ok() {
			return res.Err()
		}

		reg := poolmetrics.NewRegistry()
		if err := reg.Register(poolmetrics.New(name, res.Value())); err != nil {
			return err
		}

		cliui.PrintInfo("serving metrics for pool %q on %s/metrics", name, metricsAddr)
		return http.ListenAndServe(metricsAddr, reg.Handler())
	},
}

func init() {
	serveMetricsCmd.Flags().StringVar(&metricsAddr, "addr", ":9090", "address to serve /metrics on")
}
