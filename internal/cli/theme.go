package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sameanonim/imageboard/internal/apiclient"
	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/prefs"
)

func initThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggles between the light and dark theme",
		Args:  cobra.NoArgs,
		RunE:  runThemeCommand,
	}
}

func runThemeCommand(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	store, err := prefs.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}
	defer store.Close()

	next := store.Theme().Toggled()
	if err := store.SetTheme(next); err != nil {
		return fmt.Errorf("persisting theme: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiclient.New(cfg.Server.BaseURL).SetTheme(ctx, next); err != nil {
		logger.Log.Warn("theme not mirrored to server", "error", err)
	}

	fmt.Printf("theme: %s\n", next)
	return nil
}
