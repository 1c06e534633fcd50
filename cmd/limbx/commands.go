package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/limbx/limbx-core/internal/api"
	"github.com/limbx/limbx-core/internal/circuit"
	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/infrastructure/config"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

// resolveConfigPath returns the --config flag, then $LIMBX_CONFIG, then
// the default path.
func (o *rootOptions) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// newRootCommand creates the limbx command tree. Running it without a
// subcommand starts the server.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "limbx",
		Short:         "Limbx Core - tap circuit engine",
		Long:          "Runs tap circuits across MQTT stations, drives their LEDs and serves the operator API.",
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts.resolveConfigPath())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		fmt.Sprintf("config file (default $%s or %s)", configEnvVar, defaultConfigPath))

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newCircuitsCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine and operator API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts.resolveConfigPath())
		},
	}
}

// newValidateCommand checks the config and every circuit definition
// without connecting to anything.
func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and circuit definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadSetup(opts.resolveConfigPath())
			if err != nil {
				return err
			}
			cfg, catalog := st.cfg, st.catalog
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: ok (%d devices)\n", len(cfg.Devices))
			fmt.Fprintf(out, "circuits: %d valid in %s\n", catalog.Len(), cfg.CircuitsFile)

			var problems []string
			if st.defErr != nil {
				problems = append(problems, splitJoined(st.defErr)...)
			}
			for _, id := range cfg.ActiveCircuits {
				if !catalog.Has(id) {
					problems = append(problems, fmt.Sprintf("active circuit %q has no valid definition", id))
				}
			}
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(problems))
			}
			return nil
		},
	}
}

// newCircuitsCommand lists the valid circuit definitions.
func newCircuitsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "circuits",
		Short: "List loaded circuit definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadSetup(opts.resolveConfigPath())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTEPS\tORDER\tMAX TIME\tEFFECT\tACTIVE")
			for _, def := range st.catalog.List() {
				maxTime := "-"
				if d := def.MaxDuration(); d > 0 {
					maxTime = d.String()
				}
				active := ""
				if slices.Contains(st.cfg.ActiveCircuits, def.ID) {
					active = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					def.ID, def.Name, len(def.Steps), def.OrderMode, maxTime, def.CompletionEffect, active)
			}
			return w.Flush()
		},
	}
}

// newTokenCommand mints an operator bearer token signed with the
// configured api.auth.jwt_secret.
func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.resolveConfigPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.API.Auth.JWTSecret == "" {
				return errors.New("api.auth.jwt_secret is not set; the API is open and needs no token")
			}
			token, err := api.IssueToken(cfg.API.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "who the token is for")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "limbx %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// setup is the static part of a deployment: config, device table and
// circuit catalog.
type setup struct {
	cfg     *config.Config
	devices *device.Registry
	catalog *circuit.Catalog

	// defErr joins the per-definition problems; catalog holds the
	// definitions that passed.
	defErr error
}

// loadSetup reads the config, builds the device table and loads the
// circuit definitions. Invalid definitions do not fail it.
func loadSetup(configPath string) (*setup, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	devices, err := device.NewRegistry(cfg.Devices, cfg.Topics)
	if err != nil {
		return nil, fmt.Errorf("building device registry: %w", err)
	}
	catalog, defErr := circuit.LoadDefinitions(cfg.CircuitsFile, devices)
	if catalog == nil {
		return nil, fmt.Errorf("loading circuits: %w", defErr)
	}
	return &setup{cfg: cfg, devices: devices, catalog: catalog, defErr: defErr}, nil
}

// splitJoined flattens an errors.Join result into one message per error.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
