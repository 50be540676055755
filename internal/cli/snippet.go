package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/embed"
)

func newSnippetCmd() *cobra.Command {
	var iframe bool

	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Print the script tag host pages paste in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.API.Key == "" {
				return config.ErrNoAPIKey
			}

			ec := embedFromConfig(cfg)
			if iframe {
				fmt.Println(embed.IframeURL(cfg.Widget.BaseURL, ec))
				return nil
			}
			fmt.Println(embed.Snippet(ec, cfg.Widget.BaseURL+"/widget.js"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&iframe, "iframe-url", false, "print the iframe URL instead of the script tag")
	return cmd
}
