// Package embed implements the host-page contract: the loader snippet
// organizations paste into their sites, the iframe URL the loader
// injects, and the frame message protocol between host and iframe.
package embed

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/bayshore/chatwidget/internal/config"
)

// Frame messages exchanged over the host/iframe boundary. These are
// literal strings, not JSON envelopes.
const (
	// FrameOpenChat is sent host -> iframe to open the panel.
	FrameOpenChat = "openChat"
	// FrameCloseChatbot is sent iframe -> host to collapse the widget.
	FrameCloseChatbot = "closeChatbot"
	// FrameMessageSent is sent iframe -> host when a chat message goes
	// out, so the host can play the send tone.
	FrameMessageSent = "messageSent"
)

// IframeURL builds the address the loader points its iframe at.
func IframeURL(widgetBase string, cfg config.EmbedConfig) string {
	base := config.NormalizeBaseURL(widgetBase)
	q := url.Values{}
	q.Set("apiKey", cfg.APIKey)
	q.Set("isWidget", "true")
	if cfg.LeadCapture {
		q.Set("leadCapture", "true")
	}
	return base + "/chatbot-embed?" + q.Encode()
}

// AllowedOrigin reports whether a frame message origin matches the
// configured widget URL. Messages from anywhere else are dropped.
func AllowedOrigin(origin, widgetBase string) bool {
	o := strings.TrimSuffix(config.NormalizeBaseURL(origin), "/")
	w := strings.TrimSuffix(config.NormalizeBaseURL(widgetBase), "/")
	return o != "" && o == w
}

// Snippet renders the script tag an organization pastes into its site.
// Only attributes that differ from loader defaults are emitted.
func Snippet(cfg config.EmbedConfig, scriptURL string) string {
	var b strings.Builder
	b.WriteString(`<script src="`)
	b.WriteString(html.EscapeString(config.EnsureHTTPS(scriptURL)))
	b.WriteString(`" data-api-key="`)
	b.WriteString(html.EscapeString(cfg.APIKey))
	b.WriteString(`"`)

	attr := func(name, value string) {
		fmt.Fprintf(&b, ` %s="%s"`, name, html.EscapeString(value))
	}
	if cfg.FallbackAPIKey != "" {
		attr("data-fallback-api-key", cfg.FallbackAPIKey)
	}
	if cfg.WidgetName != "" && cfg.WidgetName != "AI Assistant" {
		attr("data-widget-name", cfg.WidgetName)
	}
	if cfg.WidgetColor != "" && cfg.WidgetColor != "blue" {
		attr("data-widget-color", cfg.WidgetColor)
	}
	if cfg.AutoOpen {
		attr("data-auto-open", "true")
	}
	if cfg.LeadCapture {
		attr("data-lead-capture", "true")
	}
	if cfg.Position != "" && cfg.Position != config.PositionBottomRight {
		attr("data-position", cfg.Position)
	}

	b.WriteString(`></script>`)
	return b.String()
}
