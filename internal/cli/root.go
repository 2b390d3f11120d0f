package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealdash/client-go/internal/config"
)

// rootOptions carries flag values and the resolved configuration shared by
// every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
	backend    string

	cfg *config.Config
}

// NewRootCommand builds the mealdash command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mealdash",
		Short:         "Order food from the command line",
		Long:          "mealdash is a client for the MealDash ordering service: browse restaurants, build a cart, and place orders.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.backend, "storage", "", "storage backend (file, sqlite, redis, memory)")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newRestaurantsCommand(opts),
		newMenuCommand(opts),
		newCartCommand(opts),
		newPromoCommand(opts),
		newCheckoutCommand(opts),
		newOrdersCommand(opts),
	)

	return cmd
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		fail(os.Stderr, "%v", err)
	}
	return err
}

func (o *rootOptions) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.FromFile(o.configFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return fmt.Errorf("cli: load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.backend != "" {
		cfg.StorageBackend = o.backend
	}

	o.cfg = cfg
	return nil
}

// app assembles the client core for a command invocation. Callers must
// Close the returned App.
func (o *rootOptions) app(ctx context.Context) (*App, error) {
	return NewApp(ctx, o.cfg)
}
