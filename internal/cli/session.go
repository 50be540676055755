package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bayshore/chatwidget/internal/identity"
	"github.com/bayshore/chatwidget/internal/store"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the persisted visitor session",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionResetCmd())
	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the session id, creating one if absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			kv, err := store.Open(cfg.State, paths, log)
			if err != nil {
				return err
			}
			defer kv.Close()

			fmt.Println(identity.NewProvider(kv, log).GetOrCreateSessionID(cmd.Context()))
			return nil
		},
	}
}

func newSessionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the session id and visit markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			kv, err := store.Open(cfg.State, paths, log)
			if err != nil {
				return err
			}
			defer kv.Close()

			ctx := cmd.Context()
			for _, key := range []string{identity.KeySessionID, identity.KeyHasVisited, identity.KeyVideoSeen} {
				if err := kv.Delete(ctx, key); err != nil {
					return fmt.Errorf("clearing %s: %w", key, err)
				}
			}
			fmt.Println("session cleared")
			return nil
		},
	}
}
