// Command smartdbctl is a small operator CLI over a smartdb configuration
// file: ping a named connection, inspect a pool's metrics, or run a raw
// SQL statement. It is not part of the core library surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
