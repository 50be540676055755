package cli

import (
	"github.com/spf13/cobra"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/embed"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the embed surfaces (config, snippet, iframe URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Serve.Port = port
			}
			if cfg.API.Key == "" {
				return config.ErrNoAPIKey
			}

			client := api.New(cfg.API.BaseURL, embedFromConfig(cfg), log)
			return embed.NewServer(cfg, client, log).Run()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
