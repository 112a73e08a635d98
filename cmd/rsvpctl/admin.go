package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"egasrsvp/cmd/buildCFG"
	"egasrsvp/internal/export"
	"egasrsvp/internal/repo"
	"egasrsvp/internal/service"
)

var adminSecret string

func openStore(ctx context.Context) (repo.Repository, *zerolog.Logger, *service.Admin, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	dbCfg, err := buildCFG.BuildDBConfig(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	r, err := repo.Open(ctx, dbCfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return r, log, service.NewAdmin(r, buildCFG.BuildAdminSecret(cfg, log), log), nil
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Query, export and reset the stored RSVPs",
		Long: `Admin commands talk to the guest record store directly and need the
same shared secret as the admin dashboard (--secret or RSVP_ADMIN_SECRET).`,
	}
	cmd.PersistentFlags().StringVar(&adminSecret, "secret", os.Getenv("RSVP_ADMIN_SECRET"), "admin shared secret")

	cmd.AddCommand(adminListCmd())
	cmd.AddCommand(adminExportCmd())
	cmd.AddCommand(adminStatsCmd())
	cmd.AddCommand(adminResetCmd())
	return cmd
}

func adminListCmd() *cobra.Command {
	var query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List RSVPs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, admin, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			rsvps, err := admin.ListAll(cmd.Context(), adminSecret)
			if err != nil {
				return err
			}
			rsvps = export.Filter(rsvps, query)

			if asJSON {
				return printJSON(cmd.OutOrStdout(), rsvps)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATA\tNOME\tEMAIL\tINSTITUIÇÃO\tESTADO")
			for _, rsvp := range rsvps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					rsvp.CreatedAt.Format("2006-01-02 15:04"), rsvp.Name, rsvp.Email, rsvp.Institution, rsvp.Confirmation.Label())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or institution")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func adminExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every RSVP as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, admin, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			rsvps, err := admin.ListAll(cmd.Context(), adminSecret)
			if err != nil {
				return err
			}

			if out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), rsvps)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.WriteCSV(f, rsvps); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d RSVPs exportados para %s\n", len(rsvps), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", export.FileName, `output file, "-" for stdout`)
	return cmd
}

func adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count RSVPs per answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, admin, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			rsvps, err := admin.ListAll(cmd.Context(), adminSecret)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), export.Summarize(rsvps))
		},
	}
}

func adminResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored RSVP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every RSVP; rerun with --yes")
			}
			r, _, admin, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := admin.DeleteAll(cmd.Context(), adminSecret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d RSVPs removidos\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
