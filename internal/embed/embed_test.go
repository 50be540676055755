package embed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
)

func TestIframeURL(t *testing.T) {
	cfg := config.EmbedConfig{APIKey: "org_sk_1"}
	assert.Equal(t,
		"https://widget.example.com/chatbot-embed?apiKey=org_sk_1&isWidget=true",
		IframeURL("https://widget.example.com/", cfg))

	cfg.LeadCapture = true
	assert.Equal(t,
		"https://widget.example.com/chatbot-embed?apiKey=org_sk_1&isWidget=true&leadCapture=true",
		IframeURL("http://widget.example.com", cfg), "scheme coerced to https")
}

func TestAllowedOrigin(t *testing.T) {
	assert.True(t, AllowedOrigin("https://widget.example.com", "https://widget.example.com/"))
	assert.True(t, AllowedOrigin("http://widget.example.com", "https://widget.example.com"))
	assert.False(t, AllowedOrigin("https://evil.example.com", "https://widget.example.com"))
	assert.False(t, AllowedOrigin("", "https://widget.example.com"))
}

func TestSnippetMinimal(t *testing.T) {
	got := Snippet(config.EmbedConfig{APIKey: "org_sk_1"}, "https://widget.example.com/widget.js")
	assert.Equal(t,
		`<script src="https://widget.example.com/widget.js" data-api-key="org_sk_1"></script>`,
		got)
}

func TestSnippetFullOptions(t *testing.T) {
	got := Snippet(config.EmbedConfig{
		APIKey:         "org_sk_1",
		FallbackAPIKey: "org_sk_2",
		WidgetName:     "Bayshore Law",
		WidgetColor:    "#112233",
		AutoOpen:       true,
		LeadCapture:    true,
		Position:       config.PositionBottomLeft,
	}, "https://widget.example.com/widget.js")

	assert.Contains(t, got, `data-fallback-api-key="org_sk_2"`)
	assert.Contains(t, got, `data-widget-name="Bayshore Law"`)
	assert.Contains(t, got, `data-widget-color="#112233"`)
	assert.Contains(t, got, `data-auto-open="true"`)
	assert.Contains(t, got, `data-lead-capture="true"`)
	assert.Contains(t, got, `data-position="bottom-left"`)
}

type stubResolver struct{}

func (stubResolver) ResolveSettings(context.Context) api.Settings {
	return api.Settings{Name: "AI Assistant", SelectedColor: "blue", LeadCapture: true}
}

func (stubResolver) WelcomeMessage(context.Context) string {
	return "Hello! How can I help you today?"
}

func serveCfg() config.Config {
	cfg := config.Defaults()
	cfg.API.Key = "org_sk_1"
	return cfg
}

func TestServerConfigEndpoint(t *testing.T) {
	s := NewServer(serveCfg(), stubResolver{}, logging.New(nil, "silent"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/embed/config", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body struct {
		Status  string `json:"status"`
		Welcome string `json:"welcome"`
		Palette struct {
			Primary string `json:"primary"`
			Hover   string `json:"hover"`
		} `json:"palette"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "Hello! How can I help you today?", body.Welcome)
	assert.Equal(t, "#3b82f6", body.Palette.Primary)
	assert.Equal(t, "#2563eb", body.Palette.Hover)
}

func TestServerSnippetEndpoint(t *testing.T) {
	s := NewServer(serveCfg(), stubResolver{}, logging.New(nil, "silent"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/embed/snippet", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body struct {
		Snippet string `json:"snippet"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Snippet, `data-api-key="org_sk_1"`)
	assert.Contains(t, body.Snippet, "/widget.js")
}

func TestServerIframeURLEndpoint(t *testing.T) {
	s := NewServer(serveCfg(), stubResolver{}, logging.New(nil, "silent"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/embed/iframe-url", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var body struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.URL, "/chatbot-embed?apiKey=org_sk_1&isWidget=true")
}

func TestServerSoundEndpoints(t *testing.T) {
	s := NewServer(serveCfg(), stubResolver{}, logging.New(nil, "silent"))

	for _, path := range []string{"/embed/sounds/welcome.wav", "/embed/sounds/message.wav"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, 200, rec.Code, path)
		assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
		assert.Equal(t, "RIFF", rec.Body.String()[:4])
	}
}

func TestServerHealthz(t *testing.T) {
	s := NewServer(serveCfg(), stubResolver{}, logging.New(nil, "silent"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
