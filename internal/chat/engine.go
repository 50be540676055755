package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/logging"
	"github.com/bayshore/chatwidget/internal/realtime"
	"github.com/bayshore/chatwidget/internal/slots"
)

// State is the panel lifecycle position. Agent mode is orthogonal to it.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateReady
	StateSending
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Fixed texts appended by the engine itself.
const (
	apologyText        = "Sorry, I encountered an error. Please try again."
	bookingApologyText = "Sorry, I encountered an error confirming your appointment. Please try again."
	agentJoinedText    = "👋 Hello! A live agent has joined the conversation to provide you with personalized assistance. How can we help you today?"
	agentReleasedText  = "🤖 Thank you for chatting with our agent! The conversation has been transferred back to your AI assistant. I'm here to help with any additional questions."
)

// dedupWindow bounds how far back the push channel looks when deciding
// whether an incoming message duplicates an optimistic local append.
const dedupWindow = 5 * time.Second

var (
	// ErrBusy is returned by Send while a prior send's response is
	// outstanding. Single-flight is enforced here, not at the network
	// layer.
	ErrBusy = errors.New("chat: send in progress")
	// ErrClosed is returned when sending into a closed panel.
	ErrClosed = errors.New("chat: panel closed")
	// ErrNoBotMessage is returned when slot selection finds no bot
	// message to attach to.
	ErrNoBotMessage = errors.New("chat: no bot message to attach slot to")
)

// Backend is the slice of the REST client the engine drives.
type Backend interface {
	History(ctx context.Context, sessionID string) (api.ChatResponse, error)
	Ask(ctx context.Context, question, sessionID string) (api.ChatResponse, error)
	ConfirmSlot(ctx context.Context, sessionID string, slot api.SlotConfirmation) (api.ChatResponse, error)
}

// Engine orchestrates the conversation: panel state, history replay,
// optimistic sends, agent handoff, and duplicate suppression. It
// implements realtime.Handler so the push channel feeds the same log.
type Engine struct {
	backend   Backend
	sessionID string
	welcome   string
	log       *logging.Logger

	conv *Conversation

	mu             sync.Mutex
	state          State
	typing         bool
	agentMode      bool
	agentID        string
	historyFetched bool
	userEngaged    bool
	welcomePlayed  bool

	now func() time.Time
}

var _ realtime.Handler = (*Engine)(nil)

// NewEngine creates an Engine for one visitor session. welcome is the
// resolved greeting, shown while the log is empty but never persisted
// into it.
func NewEngine(backend Backend, sessionID, welcome string, log *logging.Logger) *Engine {
	return &Engine{
		backend:   backend,
		sessionID: sessionID,
		welcome:   welcome,
		log:       log.Sub("chat"),
		conv:      NewConversation(),
		state:     StateClosed,
		now:       time.Now,
	}
}

// Conversation exposes the message log for rendering.
func (e *Engine) Conversation() *Conversation { return e.conv }

// SessionID returns the session this engine is bound to.
func (e *Engine) SessionID() string { return e.sessionID }

// State returns the current panel state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Typing reports whether the typing indicator should show.
func (e *Engine) Typing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typing
}

// AgentMode reports whether a human agent owns the conversation, and who.
func (e *Engine) AgentMode() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agentMode, e.agentID
}

// Welcome returns the greeting to display while the log is empty.
func (e *Engine) Welcome() string { return e.welcome }

// UserEngaged reports whether the visitor has opened the panel or clicked
// an instant reply. Instant-reply popups stop for good once true.
func (e *Engine) UserEngaged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userEngaged
}

// ConsumeWelcomeTone returns true exactly once per engine lifetime; the
// caller plays the welcome chime when it does.
func (e *Engine) ConsumeWelcomeTone() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.welcomePlayed {
		return false
	}
	e.welcomePlayed = true
	return true
}

// Open transitions Closed -> Opening -> Ready, loading server history at
// most once per open-session. Non-empty history replaces the local log
// wholesale and restores agent mode from the payload. Reopening without
// an intervening Close is a no-op.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateClosed {
		e.mu.Unlock()
		return nil
	}
	e.state = StateOpening
	e.userEngaged = true
	fetched := e.historyFetched
	e.mu.Unlock()

	if !fetched {
		resp, err := e.backend.History(ctx, e.sessionID)
		if err != nil {
			// degrade to the local log; next open retries
			e.log.Warn().Err(err).Msg("history load failed")
		} else {
			e.applyHistory(resp)
			e.mu.Lock()
			e.historyFetched = true
			e.mu.Unlock()
		}
	}

	e.mu.Lock()
	e.state = StateReady
	e.mu.Unlock()
	return nil
}

// Close collapses the panel. The conversation survives; the history
// fetched flag resets so the next open replays server state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateClosed
	e.typing = false
	e.historyFetched = false
}

// applyHistory converts the server payload and replaces the log when the
// server holds anything. An empty history leaves the log alone so the
// welcome greeting keeps rendering.
func (e *Engine) applyHistory(resp api.ChatResponse) {
	history := resp.UserData.ConversationHistory
	if len(history) == 0 {
		return
	}

	msgs := make([]Message, 0, len(history))
	agentSeen := false
	for i, h := range history {
		sender := SenderBot
		if h.Role == "user" {
			sender = SenderUser
		}
		m := Message{
			ID:        strconv.Itoa(i),
			Text:      h.Content,
			Sender:    sender,
			Timestamp: e.now(),
		}
		if sender == SenderBot {
			m.Slots = slots.Parse(h.Content)
		}
		if h.Metadata != nil && (h.Metadata.Type == "agent_message" || h.Metadata.AgentID != "") {
			agentSeen = true
		}
		msgs = append(msgs, m)
	}
	e.conv.Replace(msgs)

	if resp.AgentMode || resp.UserData.AgentMode || agentSeen {
		e.mu.Lock()
		e.agentMode = true
		e.mu.Unlock()
		e.log.Info().Msg("agent mode restored from history")
	}
}

// Send posts user text as one chat turn. The user message is appended
// optimistically before the round-trip; the typing indicator clears on
// every path. While agent mode is on, the ask answer is suppressed since
// the push channel delivers the human reply. Returns the appended bot
// message, or nil when suppressed.
func (e *Engine) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if err := e.beginSend(text); err != nil {
		return nil, err
	}
	defer e.endSend()

	resp, err := e.backend.Ask(ctx, text, e.sessionID)
	if err != nil {
		e.log.Warn().Err(err).Msg("ask failed")
		msg := e.appendBot(apologyText)
		return &msg, nil
	}
	return e.applyReply(resp), nil
}

// SendInstantReply sends a clicked instant reply as an ordinary user turn
// and suppresses further popups for the session.
func (e *Engine) SendInstantReply(ctx context.Context, text string) (*Message, error) {
	e.mu.Lock()
	e.userEngaged = true
	e.mu.Unlock()
	return e.Send(ctx, text)
}

// SelectSlot marks the most recent bot message as awaiting confirmation
// of the given slot.
func (e *Engine) SelectSlot(slot slots.Slot) error {
	ok := e.conv.UpdateLastBot(func(m *Message) {
		s := slot
		m.SelectedSlot = &s
		m.AwaitingConfirmation = true
		m.Confirmed = false
	})
	if !ok {
		return ErrNoBotMessage
	}
	return nil
}

// ConfirmSlot books the selected slot. Modeled as a normal chat turn: the
// synthesized confirmation sentence is appended as the user message, and
// failure appends the booking apology.
func (e *Engine) ConfirmSlot(ctx context.Context, slot slots.Slot) (*Message, error) {
	confirmation := api.SlotConfirmation{SlotID: slot.ID, Day: slot.Day, Time: slot.Time}
	question := api.ConfirmationSentence(confirmation)

	if err := e.beginSend(question); err != nil {
		return nil, err
	}
	defer e.endSend()

	resp, err := e.backend.ConfirmSlot(ctx, e.sessionID, confirmation)
	if err != nil {
		e.log.Warn().Err(err).Str("slotId", slot.ID).Msg("slot confirmation failed")
		msg := e.appendBot(bookingApologyText)
		return &msg, nil
	}

	e.conv.UpdateLastBot(func(m *Message) {
		if m.SelectedSlot != nil && m.SelectedSlot.ID == slot.ID {
			m.AwaitingConfirmation = false
			m.Confirmed = true
		}
	})
	return e.applyReply(resp), nil
}

// beginSend enforces single-flight, appends the optimistic user message,
// and raises the typing indicator.
func (e *Engine) beginSend(text string) error {
	e.mu.Lock()
	switch e.state {
	case StateSending:
		e.mu.Unlock()
		return ErrBusy
	case StateClosed, StateOpening:
		e.mu.Unlock()
		return ErrClosed
	}
	e.state = StateSending
	e.typing = true
	e.mu.Unlock()

	now := e.now()
	e.conv.Append(Message{
		ID:        localID(now),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
	})
	return nil
}

// endSend clears the typing indicator and returns to Ready regardless of
// how the turn finished.
func (e *Engine) endSend() {
	e.mu.Lock()
	e.typing = false
	if e.state == StateSending {
		e.state = StateReady
	}
	e.mu.Unlock()
}

// applyReply flips agent mode when the response signals it and appends
// the answer as a bot message unless agent mode suppresses it.
func (e *Engine) applyReply(resp api.ChatResponse) *Message {
	signalsAgent := resp.AgentMode || resp.UserData.AgentMode ||
		strings.Contains(resp.Answer, "agent")

	e.mu.Lock()
	if signalsAgent && !e.agentMode {
		e.agentMode = true
		e.log.Info().Msg("agent mode enabled by reply")
	}
	suppress := e.agentMode
	e.mu.Unlock()

	if suppress || resp.Answer == "" {
		return nil
	}
	msg := e.appendBot(resp.Answer)
	return &msg
}

func (e *Engine) appendBot(text string) Message {
	now := e.now()
	msg := Message{
		ID:        localID(now),
		Text:      text,
		Sender:    SenderBot,
		Timestamp: now,
		Slots:     slots.Parse(text),
	}
	e.conv.Append(msg)
	return msg
}

// AgentTakeover implements realtime.Handler: a human agent now owns the
// conversation.
func (e *Engine) AgentTakeover(agentID string) {
	e.mu.Lock()
	e.agentMode = true
	e.agentID = agentID
	e.mu.Unlock()
	e.appendBot(agentJoinedText)
}

// AgentRelease implements realtime.Handler: control returns to the AI.
func (e *Engine) AgentRelease() {
	e.mu.Lock()
	e.agentMode = false
	e.agentID = ""
	e.mu.Unlock()
	e.appendBot(agentReleasedText)
}

// AgentNewMessage implements realtime.Handler: a pushed agent message
// lands in the log unless an identical bot message was appended within
// the dedup window.
func (e *Engine) AgentNewMessage(msg realtime.AgentMessage) {
	now := e.now()
	if e.conv.containsRecent(SenderBot, msg.Content, now, dedupWindow) {
		e.log.Debug().Msg("dropping duplicate pushed message")
		return
	}

	e.mu.Lock()
	e.typing = false
	if msg.AgentID != "" {
		e.agentID = msg.AgentID
	}
	e.mu.Unlock()

	e.conv.Append(Message{
		ID:        localID(now),
		Text:      msg.Content,
		Sender:    SenderBot,
		Timestamp: now,
	})
}
