package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartdb-go/smartdb/internal/cliui"
)

var poolStatsCmd = &cobra.Command{
	Use:   "pool-stats <connection-name>",
	Short: "Create (or reuse) a pool for a connection and print its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		res := mgr.CreatePool(name, nil)
		if !res.Ok() {
			return res.Err()
		}
		p := res.Value()
		stats := p.Stats()

		rows := [][]string{
			{"total", fmt.Sprintf("%d", p.Total())},
			{"idle", fmt.Sprintf("%d", p.Idle())},
			{"acquireAttempts", fmt.Sprintf("%d", stats.AcquireAttempts)},
			{"acquireSuccesses", fmt.Sprintf("%d", stats.AcquireSuccesses)},
			{"acquireFailures", fmt.Sprintf("%d", stats.AcquireFailures)},
			{"acquireTimeouts", fmt.Sprintf("%d", stats.AcquireTimeouts)},
			{"waitEvents", fmt.Sprintf("%d", stats.WaitEvents)},
			{"factoryFailures", fmt.Sprintf("%d", stats.FactoryFailures)},
			{"avgAcquireWaitMicros", fmt.Sprintf("%d", stats.AverageAcquireWaitMicros)},
			{"peakInUse", fmt.Sprintf("%d", stats.PeakInUse)},
		}
		return cliui.PrintTable([]string{"metric", "value"}, rows)
	},
}
