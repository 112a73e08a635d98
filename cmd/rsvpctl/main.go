package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"

	"egasrsvp/cmd/buildCFG"
	"egasrsvp/internal/event"
)

var Version = "dev"

var (
	configPath string
	envPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rsvpctl",
		Short:         "Guest and admin tools for the launch ceremony RSVP service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "optional .env file")

	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(inviteCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zerolog.Logger, error) {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load(configPath, envPath, "RSVP"); err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, &log, nil
}

func loadEvent(cfg *config.Config) (event.Event, error) {
	ev, err := buildCFG.BuildEventConfig(cfg)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to build event config: %w", err)
	}
	return ev, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
