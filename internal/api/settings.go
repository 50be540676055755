package api

import (
	"context"
	"fmt"
)

// FetchSettings fetches the organization's settings with the primary key,
// retrying exactly once with the fallback key when the primary fails.
// Network errors and non-success statuses follow the same fallback chain.
// After a successful retry the client's effective key becomes the fallback
// key for all subsequent calls.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	settings, err := c.fetchSettingsWithKey(ctx, c.embed.APIKey)
	if err == nil {
		return settings, nil
	}
	c.log.Warn().Err(err).Msg("settings fetch failed with primary key")

	fallback := c.embed.FallbackAPIKey
	if fallback == "" || fallback == c.embed.APIKey {
		return Settings{}, err
	}

	settings, ferr := c.fetchSettingsWithKey(ctx, fallback)
	if ferr != nil {
		c.log.Warn().Err(ferr).Msg("settings fetch failed with fallback key")
		return Settings{}, fmt.Errorf("both keys failed: %w", err)
	}

	c.log.Info().Msg("settings loaded with fallback key")
	c.setEffectiveKey(fallback)
	return settings, nil
}

func (c *Client) fetchSettingsWithKey(ctx context.Context, key string) (Settings, error) {
	var resp settingsResponse
	if err := c.get(ctx, "/api/chatbot/settings", key, &resp); err != nil {
		return Settings{}, err
	}
	if resp.Status != "success" {
		return Settings{}, fmt.Errorf("settings status %q", resp.Status)
	}
	resp.Settings.Normalize()
	return resp.Settings, nil
}

// ResolveSettings always yields a complete, renderable Settings record:
// the fetched one when the fallback chain succeeds, otherwise a default
// synthesized from the embed-time parameters. The UI never observes a
// partial settings object.
func (c *Client) ResolveSettings(ctx context.Context) Settings {
	settings, err := c.FetchSettings(ctx)
	if err != nil {
		c.log.Info().Msg("using default settings")
		return c.DefaultSettings()
	}
	return settings
}

// DefaultSettings synthesizes settings from embed-time parameters plus
// fixed literals.
func (c *Client) DefaultSettings() Settings {
	return Settings{
		Name:           c.embed.WidgetName,
		SelectedColor:  c.embed.WidgetColor,
		LeadCapture:    c.embed.LeadCapture,
		AutoOpen:       c.embed.AutoOpen,
		BotBehavior:    "2",
		IsBotConnected: false,
		AIBehavior: "You are a helpful and friendly AI assistant. You should be professional, " +
			"concise, and focus on providing accurate information while maintaining a warm and engaging tone.",
	}
}
