// Package identity produces and persists the visitor's session identity.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/bayshore/chatwidget/internal/logging"
	"github.com/bayshore/chatwidget/internal/store"
)

// Keys used in the client-state store. The values are opaque strings with
// no schema versioning.
const (
	KeySessionID  = "chatSessionId"
	KeyHasVisited = "chatbot_has_visited"
	KeyVideoSeen  = "chatbot_video_seen"
)

// Provider reads and writes visitor identity state. Store failures are
// treated as "absent": a fresh session id over a blocked widget.
type Provider struct {
	kv  store.KV
	log *logging.Logger
}

// NewProvider creates a Provider over the given store.
func NewProvider(kv store.KV, log *logging.Logger) *Provider {
	return &Provider{kv: kv, log: log.Sub("identity")}
}

// GetOrCreateSessionID returns the persisted session id, generating and
// persisting a new UUID when none exists. There is no error path; a store
// read failure means a new id (accepting possible history loss), and a
// write failure is logged and ignored.
func (p *Provider) GetOrCreateSessionID(ctx context.Context) string {
	if id, found, err := p.kv.Get(ctx, KeySessionID); err == nil && found && id != "" {
		return id
	} else if err != nil {
		p.log.Warn().Err(err).Msg("session id read failed, generating fresh id")
	}

	id := uuid.New().String()
	if err := p.kv.Set(ctx, KeySessionID, id); err != nil {
		p.log.Warn().Err(err).Msg("session id write failed")
	}
	p.log.Debug().Str("sessionId", id).Msg("new session created")
	return id
}

// HasVisited reports whether this visitor has seen the widget before.
func (p *Provider) HasVisited(ctx context.Context) bool {
	_, found, err := p.kv.Get(ctx, KeyHasVisited)
	return err == nil && found
}

// MarkVisited records the has-visited marker.
func (p *Provider) MarkVisited(ctx context.Context) {
	if err := p.kv.Set(ctx, KeyHasVisited, "true"); err != nil {
		p.log.Warn().Err(err).Msg("visited marker write failed")
	}
}

// VideoSeen reports whether the intro video was already shown.
func (p *Provider) VideoSeen(ctx context.Context) bool {
	_, found, err := p.kv.Get(ctx, KeyVideoSeen)
	return err == nil && found
}

// MarkVideoSeen records the video-seen marker.
func (p *Provider) MarkVideoSeen(ctx context.Context) {
	if err := p.kv.Set(ctx, KeyVideoSeen, "true"); err != nil {
		p.log.Warn().Err(err).Msg("video marker write failed")
	}
}
