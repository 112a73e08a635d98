package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"egasrsvp/cmd/buildCFG"
	"egasrsvp/internal/client"
	"egasrsvp/internal/invite"
	"egasrsvp/internal/localcache"
	"egasrsvp/internal/model"
	"egasrsvp/pkg/validator"
)

func openClient(cmd *cobra.Command) (*client.Client, *localcache.Cache, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ev, err := loadEvent(cfg)
	if err != nil {
		return nil, nil, err
	}
	cc := buildCFG.BuildClientConfig(cfg)
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cc.ServerURL = server
	}

	cache, err := localcache.Open(cc.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return client.New(cc.ServerURL, cache, ev, log), cache, nil
}

func submitCmd() *cobra.Command {
	var g model.Guest
	var status string
	var force bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send an RSVP and keep the confirmation on this device",
		Example: `  rsvpctl submit --nome "Ana Silva" --email ana@exemplo.ao --confirmacao sim
  rsvpctl submit --nome "Bruno" --email b@x.ao --instituicao ENAPP --confirmacao talvez`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cache, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			if force {
				if err := c.Forget(cmd.Context()); err != nil {
					return err
				}
			}

			g.Confirmation = model.Status(status)
			conf, err := c.Submit(cmd.Context(), g)
			if errors.Is(err, client.ErrAlreadyConfirmed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Presença já confirmada neste dispositivo (%s). Use rsvpctl invite para o convite, ou --force para enviar de novo.\n", conf.ID)
				return printJSON(cmd.OutOrStdout(), conf)
			}
			if err != nil {
				var fields validator.Errors
				if errors.As(err, &fields) {
					for f, msg := range fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, msg)
					}
					return errors.New("formulário inválido")
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), conf)
		},
	}

	cmd.Flags().StringVar(&g.Name, "nome", "", "guest name")
	cmd.Flags().StringVar(&g.Email, "email", "", "guest email")
	cmd.Flags().StringVar(&g.Institution, "instituicao", "", "institution")
	cmd.Flags().StringVar(&g.Role, "cargo", "", "role")
	cmd.Flags().StringVar(&status, "confirmacao", "", "sim, nao or talvez")
	cmd.Flags().StringVar(&g.Phone, "telefone", "", "phone")
	cmd.Flags().StringVar(&g.Message, "mensagem", "", "message to the author")
	cmd.Flags().String("server", "", "server base URL, overrides client.server_url")
	cmd.Flags().BoolVar(&force, "force", false, "forget the confirmation kept on this device and submit again")

	return cmd
}

func showCmd() *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the confirmation kept on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cache, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			if forget {
				return c.Forget(cmd.Context())
			}

			conf, _, ok, err := c.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma confirmação neste dispositivo.")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), conf)
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "remove the local confirmation")
	return cmd
}

func inviteCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Write the shareable invite PNG for the local confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cache, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			conf, _, ok, err := c.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("nenhuma confirmação neste dispositivo, use rsvpctl submit")
			}

			data, name, err := c.Invite(*conf)
			if errors.Is(err, invite.ErrNoCode) {
				return nil
			}
			if err != nil {
				return err
			}
			if out != "" {
				name = out
			}
			if !strings.HasSuffix(strings.ToLower(name), ".png") {
				name += ".png"
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return fmt.Errorf("write invite: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, defaults to convite-<nome>.png")
	return cmd
}
