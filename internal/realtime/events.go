package realtime

import "time"

// Event names on the push channel.
const (
	EventConnectionConfirmed = "connection_confirmed"
	EventAgentTakeover       = "agent_takeover"
	EventAgentRelease        = "agent_release"
	EventNewMessage          = "new_message"

	// emitted by the client after connecting
	eventJoinRoom = "join_room"
)

// Event is the envelope for all push-channel messages. The API key scopes
// the room; the session id scopes the recipient.
type Event struct {
	Event     string        `json:"event"`
	Room      string        `json:"room,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	AgentID   string        `json:"agent_id,omitempty"`
	Message   *AgentMessage `json:"message,omitempty"`
}

// AgentMessage is a message injected by a human agent.
type AgentMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	AgentID   string    `json:"agent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives push events already filtered to the local session.
// Calls arrive from the listener's read goroutine; implementations
// serialize their own state.
type Handler interface {
	// AgentTakeover fires when a human agent joins the conversation.
	AgentTakeover(agentID string)
	// AgentRelease fires when the conversation returns to the AI.
	AgentRelease()
	// AgentNewMessage fires for an assistant-role message carrying an
	// agent id.
	AgentNewMessage(msg AgentMessage)
}
