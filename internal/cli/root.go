package cli

import (
	"github.com/spf13/cobra"

	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatwidget",
		Short: "chatwidget — embeddable website chat client",
		Long:  "Chatwidget is the client engine behind the embeddable website chat widget: it talks to the chatbot backend, tracks the visitor session, and hosts the embed surfaces.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.chatwidget/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newSnippetCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the config file and reconfigures the logger from it
// unless a --log-level flag overrode the level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	log = logging.NewStyled(cfg.Logging.ConsoleStyle, level)
	return cfg, nil
}

// embedFromConfig builds the embed-time parameters from file config, for
// runs that have no host page to supply them.
func embedFromConfig(cfg config.Config) config.EmbedConfig {
	leadCapture := cfg.Widget.LeadCapture != nil && *cfg.Widget.LeadCapture
	return config.EmbedConfig{
		APIKey:         cfg.API.Key,
		FallbackAPIKey: cfg.API.FallbackKey,
		WidgetName:     cfg.Widget.Name,
		WidgetColor:    cfg.Widget.Color,
		AutoOpen:       cfg.Widget.AutoOpen,
		LeadCapture:    leadCapture,
		Position:       cfg.Widget.Position,
	}
}
