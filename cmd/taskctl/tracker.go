package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/ytakahashi/task-manager/internal/config"
	"github.com/ytakahashi/task-manager/internal/taskapi"
	"github.com/ytakahashi/task-manager/internal/tracker"
)

// openTracker builds a Tracker from config and flags. When load is set it
// also performs the initial load and fails if that does.
func openTracker(cmd *cobra.Command, load bool) (*tracker.Tracker, error) {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.Client.APIURL = api
	}

	client := taskapi.NewClient(cfg.Client.APIURL, cfg.Client.Timeout)
	tr := tracker.New(client, tracker.Options{
		Rollback:        cfg.Client.Rollback,
		ValidationFlash: cfg.Client.ValidationFlash,
		DateLayout:      cfg.Client.DateLayout,
	})

	if !load {
		return tr, nil
	}
	if err := tr.Load(cmd.Context()); err != nil {
		tr.Close()
		return nil, err
	}
	return tr, nil
}
