// Package cli is the command line surface of the thread-page client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	baseURL    string
	socketURL  string
	storePath  string
)

func NewCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "boardwatch",
		Short:   "Imageboard thread client",
		Long:    "Headless imageboard thread client: follows a thread over the realtime channel with an HTTP polling fallback.",
		Example: fmt.Sprintf("  %s <command> [flags...]", os.Args[0]),
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:5000", "Server base URL")
	rootCmd.PersistentFlags().StringVar(&socketURL, "socket-url", "ws://localhost:5000/socket", "Realtime socket URL")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "imageboard.db", "Preference store filename")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("socket-url", rootCmd.PersistentFlags().Lookup("socket-url"))
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))

	rootCmd.AddCommand(initWatchCommand())
	rootCmd.AddCommand(initThemeCommand())

	return rootCmd
}
