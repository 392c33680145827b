// Package main is the entry point for profilectl, a local command that
// extracts profiles from saved HTML files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the profilectl CLI.
var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "Extract structured profiles from saved profile pages",
	Long: `profilectl runs the go_profile extraction engine over HTML files saved on
disk. A profile directory holds the main page as profile.html and optional
detail pages named after their section (experience.html, skills.html,
licenses-and-certifications.html, ...).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./profilectl.yaml or ~/.config/profilectl/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("profilectl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "profilectl"))
		}
	}

	viper.SetEnvPrefix("PROFILECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
