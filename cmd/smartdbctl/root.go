package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartdb-go/smartdb/drivers/mysql"
	"github.com/smartdb-go/smartdb/drivers/postgres"
	"github.com/smartdb-go/smartdb/drivers/sqlite"
	"github.com/smartdb-go/smartdb/internal/configwatch"
	"github.com/smartdb-go/smartdb/internal/dblog"
	"github.com/smartdb-go/smartdb/internal/version"
	"github.com/smartdb-go/smartdb/manager"
)

var (
	cfgFile string
	debug   bool
	mgr     = manager.New()
)

var rootCmd = &cobra.Command{
	Use:   "smartdbctl",
	Short: "Operate SmartDB connection pools from the command line",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug := viper.GetBool("debug")
		dblog.Init(true, debug)
		dblog.Info("smartdbctl starting", version.Get().LogFields()...)
		registerDrivers()
		return loadConfig()
	},
}

func init() {
	viper.SetEnvPrefix("smartdb")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.smartdb/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// SMARTDB_CONFIG_PATH and SMARTDB_DEBUG (via AutomaticEnv above) override
	// the --config/--debug flags' defaults but not an explicit flag value,
	// viper's usual flag > env > default precedence.
	viper.SetDefault("config_path", "")
	viper.SetDefault("debug", false)
	viper.BindPFlag("config_path", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(poolStatsCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

func registerDrivers() {
	mgr.RegisterDriver(sqlite.New())
	mgr.RegisterDriver(mysql.New())
	mgr.RegisterDriver(postgres.New())
}

// loadConfig resolves the config path (--config flag, SMARTDB_CONFIG_PATH,
// then $HOME/.smartdb/config.json), loads a .env file for SMARTDB_*
// overrides, and watches the config file for live reload while the process
// runs.
func loadConfig() error {
	godotenv.Load() // best effort; absence of a .env file is not an error

	path := viper.GetString("config_path")
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".smartdb", "config.json")
	}

	if _, err := os.Stat(path); err != nil {
		dblog.Warn("no config file found, starting with an empty connection set", "path", path)
		return nil
	}

	watcher, err := configwatch.New(path, configwatch.DefaultDebounce, func() error {
		if reloadErr := mgr.LoadConfig(path); reloadErr != nil {
			return reloadErr
		}
		return nil
	})
	if err != nil {
		dblog.Warn("config watch disabled", "error", err.Error())
		return mgr.LoadConfig(path)
	}

	return watcher.Start()
}
