// Package realtime maintains the push channel that delivers live
// agent-takeover events to the widget.
package realtime

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bayshore/chatwidget/internal/logging"
)

// Reconnection policy: a small bounded budget, then permanently degraded
// until the widget is reloaded. Losing the channel only costs live agent
// features, so silence beats a retry storm.
const (
	dialTimeout       = 15 * time.Second
	reconnectAttempts = 3
	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 5 * time.Second
)

// ErrListenerClosed is returned when operating on a closed listener.
var ErrListenerClosed = errors.New("realtime: listener closed")

// Listener owns a long-lived websocket connection scoped to the API key
// (used as the room identifier) and dispatches events for the local
// session to its Handler.
type Listener struct {
	wsURL     string
	apiKey    string
	sessionID string
	handler   Handler
	log       *logging.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// New creates a Listener for the given socket origin. The origin is the
// REST origin unless overridden; the scheme is rewritten for websockets.
func New(socketURL, apiKey, sessionID string, handler Handler, log *logging.Logger) *Listener {
	return &Listener{
		wsURL:     wsEndpoint(socketURL, apiKey),
		apiKey:    apiKey,
		sessionID: sessionID,
		handler:   handler,
		log:       log.Sub("realtime"),
		done:      make(chan struct{}),
	}
}

// wsEndpoint turns an http(s) origin into the ws(s) event endpoint.
func wsEndpoint(origin, apiKey string) string {
	u := origin
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws?apiKey=" + url.QueryEscape(apiKey)
}

// Start launches the connect/read loop in a goroutine and returns
// immediately; connection failures degrade silently after the retry
// budget.
func (l *Listener) Start() {
	go l.run()
}

func (l *Listener) run() {
	delay := reconnectDelay
	for attempt := 0; attempt <= reconnectAttempts; attempt++ {
		if l.isClosed() {
			return
		}
		if attempt > 0 {
			l.log.Info().Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")
			select {
			case <-time.After(delay):
			case <-l.done:
				return
			}
			delay *= 2
			if delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
		}

		if err := l.connectAndRead(); err != nil {
			if l.isClosed() {
				return
			}
			l.log.Warn().Err(err).Msg("push channel dropped")
			continue
		}
		return
	}
	l.log.Warn().Msg("push channel retry budget exhausted, live agent features disabled")
}

// connectAndRead dials, joins the API-key room, and reads events until the
// connection drops or the listener closes.
func (l *Listener) connectAndRead() error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(l.wsURL, nil)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		conn.Close()
		return ErrListenerClosed
	}
	l.conn = conn
	l.mu.Unlock()

	if err := conn.WriteJSON(Event{Event: eventJoinRoom, Room: l.apiKey}); err != nil {
		conn.Close()
		return err
	}
	l.log.Info().Str("room", l.apiKey).Msg("push channel connected")

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			conn.Close()
			if l.isClosed() {
				return nil
			}
			return err
		}
		l.dispatch(ev)
	}
}

// dispatch routes one event to the handler. Events for other sessions are
// dropped here so the handler only ever sees its own conversation.
func (l *Listener) dispatch(ev Event) {
	if l.isClosed() {
		return
	}

	switch ev.Event {
	case EventConnectionConfirmed:
		l.log.Debug().Msg("connection confirmed")
	case EventAgentTakeover:
		if ev.SessionID != l.sessionID {
			return
		}
		l.log.Info().Str("agentId", ev.AgentID).Msg("agent takeover")
		l.handler.AgentTakeover(ev.AgentID)
	case EventAgentRelease:
		if ev.SessionID != l.sessionID {
			return
		}
		l.log.Info().Msg("agent release")
		l.handler.AgentRelease()
	case EventNewMessage:
		if ev.SessionID != l.sessionID || ev.Message == nil {
			return
		}
		if ev.Message.Role != "assistant" || ev.Message.AgentID == "" {
			return
		}
		l.handler.AgentNewMessage(*ev.Message)
	default:
		l.log.Debug().Str("event", ev.Event).Msg("ignoring unknown event")
	}
}

func (l *Listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close tears the channel down. No handler call fires after Close returns
// observably to the caller's goroutine ordering; the connection is closed
// and the run loop exits.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.done)
	conn := l.conn
	l.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}
