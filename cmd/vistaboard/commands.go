package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfbarros/vistaboard/internal/board"
	"github.com/gfbarros/vistaboard/internal/config"
	"github.com/gfbarros/vistaboard/internal/graph"
	"github.com/gfbarros/vistaboard/internal/pipeline"
	"github.com/gfbarros/vistaboard/internal/rotation"
	"github.com/gfbarros/vistaboard/internal/storage"
)

// --- snapshot ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the list once and print a board view as JSON",
	Long: `Fetch the list once and print a board view as JSON.

Runs the full pipeline (fetch, field mapping, team resolution,
classification, aggregation) without starting the server.

Examples:
  vistaboard snapshot
  vistaboard snapshot --team "Operação - Salvador"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		team, _ := cmd.Flags().GetString("team")
		if team == "" {
			team = rotation.Overview
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening reference store: %w", err)
		}
		defer store.Close()

		colors, err := store.TeamColors()
		if err != nil {
			return err
		}
		months, err := store.MonthNames()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		tokens := graph.NewTokenSource(ctx, cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret)
		client := graph.NewClient(tokens, cfg.Graph.SiteID, cfg.Graph.ListID)
		refresher := pipeline.NewRefresher(client, store, cfg.Pipeline.DueSoonDays)

		now := time.Now()
		builder := board.NewBuilder(colors, months, cfg.Pipeline.MinorClientThreshold)

		ds, err := refresher.Refresh(ctx, now)
		if err != nil {
			return err
		}
		if ds.Empty() {
			return encodeJSON(builder.NoDataView(now))
		}

		if team != rotation.Overview {
			scoped := board.ScopedTeams(ds.Records, now)
			known := false
			for _, t := range scoped {
				if t == team {
					known = true
					break
				}
			}
			if !known {
				return fmt.Errorf("unknown team %q (have: %v)", team, scoped)
			}
		}

		return encodeJSON(builder.Build(ds, team, now))
	},
}

func init() {
	snapshotCmd.Flags().String("team", "", "team to render (default: overview)")
}

// --- teams ---

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the rotation sequence from the running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := newAPIClient(cfg)
		resp, err := client.get(cmd.Context(), "/teams")
		if err != nil {
			return err
		}

		var result struct {
			Teams []string `json:"teams"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for i, t := range result.Teams {
			printStatus(fmt.Sprintf("%d", i), "%s", t)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, ki := range config.ShowAll(cfg) {
			printStatus(ki.Key, "%s (env %s)", ki.Value, ki.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func encodeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
