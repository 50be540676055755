package config

import (
	"errors"
	"net/url"
)

// Widget positions accepted by the loader.
const (
	PositionBottomRight = "bottom-right"
	PositionBottomLeft  = "bottom-left"
	PositionTopRight    = "top-right"
	PositionTopLeft     = "top-left"
)

var validPositions = map[string]bool{
	PositionBottomRight: true,
	PositionBottomLeft:  true,
	PositionTopRight:    true,
	PositionTopLeft:     true,
}

// ErrNoAPIKey is returned when neither the embed tag nor the host page URL
// carries an API key. It is the only fatal startup condition: the widget
// never renders without one.
var ErrNoAPIKey = errors.New("no API key provided: add data-api-key to the embed script tag")

// EmbedConfig is the configuration an organization supplies at embed time
// through data-* attributes on the loader script tag.
type EmbedConfig struct {
	APIKey         string
	FallbackAPIKey string
	WidgetName     string
	WidgetColor    string
	AutoOpen       bool
	LeadCapture    bool
	Position       string
}

// ParseEmbedAttrs builds an EmbedConfig from script-tag data attributes,
// falling back to a chatbot-api-key query parameter on the host page URL
// when the tag carries no key. Missing API key is the only error.
func ParseEmbedAttrs(attrs map[string]string, query url.Values) (EmbedConfig, error) {
	cfg := EmbedConfig{
		APIKey:         attrs["data-api-key"],
		FallbackAPIKey: attrs["data-fallback-api-key"],
		WidgetName:     attrs["data-widget-name"],
		WidgetColor:    attrs["data-widget-color"],
		AutoOpen:       attrs["data-auto-open"] == "true",
		LeadCapture:    attrs["data-lead-capture"] == "true",
		Position:       attrs["data-position"],
	}

	if cfg.APIKey == "" && query != nil {
		cfg.APIKey = query.Get("chatbot-api-key")
	}
	if cfg.APIKey == "" {
		return EmbedConfig{}, ErrNoAPIKey
	}

	if cfg.WidgetName == "" {
		cfg.WidgetName = "AI Assistant"
	}
	if cfg.WidgetColor == "" {
		cfg.WidgetColor = "blue"
	}
	if !validPositions[cfg.Position] {
		cfg.Position = PositionBottomRight
	}
	return cfg, nil
}
