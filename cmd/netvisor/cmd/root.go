package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-netvisor/internal/config"
	"github.com/sirosfoundation/go-netvisor/pkg/dnscache"
	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
	"github.com/sirosfoundation/go-netvisor/pkg/resource"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	envFile    string
	verbose    bool
	raw        bool
)

// app is the state shared by subcommands after PersistentPreRunE
type app struct {
	cfg     *config.Config
	client  *netvisor.Client
	service *resource.Service
	out     io.Writer
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "netvisor",
	Short: "Call the Netvisor integration interface",
	Long: `netvisor sends signed requests to the Netvisor accounting service.

Credentials are read from a YAML configuration file, a .env file or
NETVISOR_* environment variables.

Examples:
  # List customers matching a keyword, printed as YAML
  netvisor get customerlist.nv keyword=acme

  # Print the raw response XML
  netvisor get getcustomer.nv id=165 --raw

  # Post a request body
  netvisor post customer.nv method=add --file customer.xml

  # Typed listings
  netvisor customers --keyword acme
  netvisor products`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file (env: NETVISOR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file loaded before configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&raw, "raw", false, "Print raw response XML instead of the parsed tree")
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	if configFile == "" {
		configFile = os.Getenv("NETVISOR_CONFIG")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	var cache *dnscache.Cache
	if cfg.DNSCache.Enabled {
		cache, err = dnscache.New(cfg.ResolverConfig())
		if err != nil {
			return fmt.Errorf("creating DNS cache: %w", err)
		}
	}

	client, err := netvisor.NewClient(cfg.ClientConfig(cache), netvisor.WithLogger(logger))
	if err != nil {
		return err
	}

	current = &app{
		cfg:     cfg,
		client:  client,
		service: resource.NewService(client, resource.WithCharset(cfg.Netvisor.Charset), resource.WithLogger(logger)),
		out:     cmd.OutOrStdout(),
	}
	return nil
}

func newLogger(lc config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// parseParams turns key=value arguments into ordered query parameters
func parseParams(args []string) (netvisor.Params, error) {
	var params netvisor.Params
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		params = params.Add(key, value)
	}
	return params, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
