package embed

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
	"github.com/bayshore/chatwidget/internal/sound"
	"github.com/bayshore/chatwidget/internal/theme"
	"github.com/bayshore/chatwidget/internal/version"
)

// Server hosts the embed surfaces: resolved widget configuration, the
// paste-in snippet, and the iframe URL for a given API key. These are
// consumed cross-origin by host pages, so CORS is wide open.
type Server struct {
	cfg      config.Config
	resolver SettingsResolver
	log      *logging.Logger
	engine   *gin.Engine
}

// SettingsResolver is the API client slice the server needs. It never
// fails; fetch errors resolve to the synthesized default record.
type SettingsResolver interface {
	ResolveSettings(ctx context.Context) api.Settings
	WelcomeMessage(ctx context.Context) string
}

// NewServer builds the embed host around a resolver bound to the
// configured API key.
func NewServer(cfg config.Config, resolver SettingsResolver, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		log:      log.Sub("embed"),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-API-Key"},
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	e := s.engine.Group("/embed")
	{
		e.GET("/config", s.handleConfig)
		e.GET("/snippet", s.handleSnippet)
		e.GET("/iframe-url", s.handleIframeURL)
		e.GET("/sounds/welcome.wav", s.handleSound(sound.WelcomeTone))
		e.GET("/sounds/message.wav", s.handleSound(sound.MessageTone))
	}
}

// handleSound serves a synthesized notification tone. The tones are
// deterministic, so they are rendered once and cached for the process
// lifetime.
func (s *Server) handleSound(tone func() []byte) gin.HandlerFunc {
	var once sync.Once
	var wav []byte
	return func(c *gin.Context) {
		once.Do(func() { wav = tone() })
		c.Data(http.StatusOK, "audio/wav", wav)
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Serve.Port)
	s.log.Info().Str("addr", addr).Msg("embed server listening")
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

// handleConfig returns everything the loader needs to render: resolved
// settings, the derived color palette, and the welcome line. Settings
// resolution never fails, so neither does this endpoint.
func (s *Server) handleConfig(c *gin.Context) {
	settings := s.resolver.ResolveSettings(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"settings": settings,
		"palette":  theme.Resolve(settings.SelectedColor),
		"welcome":  s.resolver.WelcomeMessage(c.Request.Context()),
	})
}

func (s *Server) handleSnippet(c *gin.Context) {
	cfg := s.embedConfig()
	scriptURL := s.cfg.Widget.BaseURL + "/widget.js"
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"snippet": Snippet(cfg, scriptURL),
	})
}

func (s *Server) handleIframeURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"url":    IframeURL(s.cfg.Widget.BaseURL, s.embedConfig()),
	})
}

func (s *Server) embedConfig() config.EmbedConfig {
	leadCapture := s.cfg.Widget.LeadCapture != nil && *s.cfg.Widget.LeadCapture
	return config.EmbedConfig{
		APIKey:         s.cfg.API.Key,
		FallbackAPIKey: s.cfg.API.FallbackKey,
		WidgetName:     s.cfg.Widget.Name,
		WidgetColor:    s.cfg.Widget.Color,
		AutoOpen:       s.cfg.Widget.AutoOpen,
		LeadCapture:    leadCapture,
		Position:       s.cfg.Widget.Position,
	}
}
