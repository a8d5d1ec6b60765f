// Package cli is the operator command line: offline classification, sample
// errors, schema migration and quota inspection.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/errexplain/internal/application"
	appquota "github.com/bryanwahyu/errexplain/internal/application/quota"
	"github.com/bryanwahyu/errexplain/internal/config"
	"github.com/bryanwahyu/errexplain/internal/domain/language"
	"github.com/bryanwahyu/errexplain/internal/infra/db"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

// Options holds CLI-level configuration.
type Options struct {
	ConfigPath string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.yaml"
	}

	root := &cobra.Command{
		Use:           "errexplain",
		Short:         "errexplain - error analysis service tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to config.yaml")

	root.AddCommand(newClassifyCommand())
	root.AddCommand(newSamplesCommand())
	root.AddCommand(newMigrateCommand(&opts))
	root.AddCommand(newQuotaCommand(&opts))
	return root
}

func newClassifyCommand() *cobra.Command {
	var declared string

	cmd := &cobra.Command{
		Use:   "classify [error text]",
		Short: "Guess the language of an error message (reads stdin without args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no error text given")
			}

			out := cmd.OutOrStdout()
			adv := language.Check(text, language.Label(declared))
			if adv.Detected == "" {
				fmt.Fprintln(out, "no confident guess")
			} else {
				fmt.Fprintf(out, "detected: %s\n", adv.Detected)
			}
			if adv.Warning != "" {
				fmt.Fprintf(out, "warning: %s\n", adv.Warning)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&declared, "language", "", "Declared language to check against")
	return cmd
}

func newSamplesCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "samples [language]",
		Short: "Print sample errors for a language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, l := range language.Labels() {
					fmt.Fprintln(out, l)
				}
				return nil
			}
			label := language.Other
			if len(args) == 1 {
				label = language.Label(args[0])
			}
			for i, s := range language.Samples(label) {
				fmt.Fprintf(out, "--- %s sample %d ---\n%s\n", label, i+1, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List selectable languages instead")
	return cmd
}

func newMigrateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables for the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			conn, dialect, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.Migrate(cmd.Context(), conn, dialect); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", dialect.Name)
			return nil
		},
	}
}

func newQuotaCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "quota <clientId>",
		Short: "Show today's analysis quota of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			conn, dialect, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			ledger := appquota.NewLedger(sqlstore.NewUsageRepository(conn, dialect),
				application.SystemClock{}, cfg.Quota.DailyLimit, cfg.Location())
			st, err := ledger.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}
