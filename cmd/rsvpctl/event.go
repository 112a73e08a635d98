package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"egasrsvp/internal/calendar"
)

func calendarCmd() *cobra.Command {
	var google bool
	var out string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the event as an .ics file or a Google Calendar link",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ev, err := loadEvent(cfg)
			if err != nil {
				return err
			}

			if google {
				fmt.Fprintln(cmd.OutOrStdout(), calendar.GoogleLink(ev))
				return nil
			}
			ics := calendar.ICS(ev, time.Now())
			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), ics)
				return nil
			}
			return os.WriteFile(out, []byte(ics), 0o644)
		},
	}

	cmd.Flags().BoolVar(&google, "google", false, "print the Google Calendar link instead")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the .ics to this file")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the guest record store schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, log, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			if args[0] == "down" {
				return r.MigrateDown(cmd.Context())
			}
			if err := r.MigrateUp(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
	return cmd
}
