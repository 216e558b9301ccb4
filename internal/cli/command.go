// Package cli provides the command line host for the DeepL component. It
// runs one initialize, process, finalize cycle per invocation using cobra
// for commands and viper for settings.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pricofy/deepl-component/internal/component"
	"github.com/pricofy/deepl-component/internal/config"
	"github.com/pricofy/deepl-component/internal/domain"
	"github.com/pricofy/deepl-component/internal/logger"
	"github.com/pricofy/deepl-component/internal/plugin"
	"github.com/pricofy/deepl-component/internal/translator"
)

// Version is reported by --version.
const Version = "0.1.0"

// Flags holds command-line flag values.
type Flags struct {
	CfgFile   string
	APIKey    string
	ServerURL string
	LogLevel  string

	Source string
	Target string
	Event  string
}

// NewFlags creates a Flags instance with default values.
func NewFlags() *Flags {
	return &Flags{}
}

// FactoryFunc builds the translator factory from the resolved config.
type FactoryFunc func(cfg *config.Config) translator.Factory

// DefaultFactory builds DeepL clients.
func DefaultFactory(cfg *config.Config) translator.Factory {
	return translator.NewFactory(cfg.TranslatorOptions()...)
}

// CreateRootCommand creates the root command with its subcommands.
func CreateRootCommand(flags *Flags, newFactory FactoryFunc) *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "deepl",
		Short: "DeepL translation component",
		Long: `deepl drives the DeepL translation component through one
initialize, process, finalize cycle.

Examples:
  deepl translate --target DE "Hello"
  deepl translate --source EN --target JA "Good morning"
  deepl process --event '{"action":"detect","args":{"message":"Hallo"}}'`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, flags.CfgFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&flags.APIKey, "api-key", "", "DeepL API key (default $DEEPL_API_KEY)")
	pf.StringVar(&flags.ServerURL, "server-url", "", "DeepL API server URL (default picked from the key)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level: debug, info, warn, error (default info)")

	bindFlagsToViper(v, pf)

	rootCmd.AddCommand(
		newTranslateCommand(flags, v, newFactory),
		newProcessCommand(flags, v, newFactory),
	)
	return rootCmd
}

func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	_ = v.BindPFlag(config.KeyAPIKey, fs.Lookup("api-key"))
	_ = v.BindPFlag(config.KeyServerURL, fs.Lookup("server-url"))
	_ = v.BindPFlag(config.KeyLogLevel, fs.Lookup("log-level"))
}

func newTranslateCommand(flags *Flags, v *viper.Viper, newFactory FactoryFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [message]",
		Short: "Translate a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := domain.TranslateConfig{
				Message: strings.Join(args, " "),
				Source:  flags.Source,
				Target:  flags.Target,
			}
			return run(cmd, v, newFactory, cfg, true)
		},
	}
	cmd.Flags().StringVarP(&flags.Source, "source", "s", "", "source language code (default: auto-detect)")
	cmd.Flags().StringVarP(&flags.Target, "target", "t", "", "target language code")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newProcessCommand(flags *Flags, v *viper.Viper, newFactory FactoryFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a raw component configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := domain.ParseConfig([]byte(flags.Event))
			if err != nil {
				return err
			}
			return run(cmd, v, newFactory, cfg, false)
		},
	}
	cmd.Flags().StringVarP(&flags.Event, "event", "e", "", "configuration as JSON")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

// run executes one lifecycle and prints the field as JSON. Without
// requireKey an empty API key leaves the component uninitialized.
func run(cmd *cobra.Command, v *viper.Viper, newFactory FactoryFunc, cfg domain.Config, requireKey bool) error {
	settings, err := config.FromViper(v)
	if err != nil {
		return err
	}

	zl, err := logger.New(settings.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer zl.Sync()

	comp := component.New(newFactory(settings), component.WithLogger(zl.Sugar().Named("component")))

	var initCfg domain.Config
	if requireKey || settings.APIKey != "" {
		initCfg = domain.InitConfig{APIKey: settings.APIKey}
	}

	field, err := plugin.Run(cmd.Context(), comp, initCfg, cfg)
	if err != nil {
		zl.Error("lifecycle failed", zap.String("action", cfg.Action()), zap.Error(err))
		return fmt.Errorf("%s failed: %w", cfg.Action(), err)
	}

	return writeField(cmd.OutOrStdout(), field)
}

func writeField(w io.Writer, field *domain.Field) error {
	out, err := json.Marshal(field)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
