package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	survey "github.com/AlecAivazis/survey/v2"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Interactively scaffold a connections config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		answers := struct {
			Name   string
			Driver string
			Path   string
		}{}

		questions := []*survey.Question{
			{Name: "Name", Prompt: &survey.Input{Message: "Connection name:", Default: "main"}},
			{Name: "Driver", Prompt: &survey.Select{Message: "Driver:", Options: []string{"sqlite", "mysql", "postgres"}, Default: "sqlite"}},
			{Name: "Path", Prompt: &survey.Input{Message: "sqlite path (ignored for other drivers):", Default: ":memory:"}},
		}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}

		conn := map[string]any{"driver": answers.Driver}
		if answers.Driver == "sqlite" {
			conn["path"] = answers.Path
		}
		doc := map[string]any{"connections": map[string]any{answers.Name: conn}}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}

		path := viper.GetString("config_path")
		if path == "" {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			dir := filepath.Join(home, ".smartdb")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			path = filepath.Join(dir, "config.json")
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}
