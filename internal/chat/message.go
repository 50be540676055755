// Package chat holds the conversation log and the orchestration engine
// that decides what the widget shows as asynchronous events arrive from
// the REST client and the push channel.
package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/bayshore/chatwidget/internal/slots"
)

// Sender tags who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the conversation log. Once appended it is never
// mutated, except to attach slot selection and confirmation state to the
// most recent bot message.
type Message struct {
	ID                   string       `json:"id"`
	Text                 string       `json:"text"`
	Sender               Sender       `json:"sender"`
	Timestamp            time.Time    `json:"timestamp"`
	Options              []string     `json:"options,omitempty"`
	Slots                []slots.Slot `json:"appointmentSlots,omitempty"`
	SelectedSlot         *slots.Slot  `json:"selectedSlot,omitempty"`
	AwaitingConfirmation bool         `json:"awaitingConfirmation,omitempty"`
	Confirmed            bool         `json:"confirmed,omitempty"`
}

// Conversation is an ordered, append-only message log. Insertion order is
// display order, oldest first. Closing the panel never clears it.
type Conversation struct {
	mu   sync.Mutex
	msgs []Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message to the end of the log.
func (c *Conversation) Append(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

// Replace swaps the whole log for msgs. History loads replace wholesale,
// never merge, so a locally-synthesized welcome line can't leak into a
// server-backed conversation.
func (c *Conversation) Replace(msgs []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append([]Message(nil), msgs...)
}

// Messages returns a copy of the log in display order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

// Len reports how many messages the log holds.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// UpdateLastBot applies fn to the most recent bot message. This is the
// only sanctioned in-place edit; it exists for slot selection and
// confirmation. Returns false when no bot message exists.
func (c *Conversation) UpdateLastBot(fn func(*Message)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Sender == SenderBot {
			fn(&c.msgs[i])
			return true
		}
	}
	return false
}

// containsRecent reports whether a message with the same sender and text
// was appended within the given window of now. The push channel uses this
// to suppress duplicates of optimistically appended local messages.
func (c *Conversation) containsRecent(sender Sender, text string, now time.Time, window time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		m := c.msgs[i]
		if now.Sub(m.Timestamp) > window {
			return false
		}
		if m.Sender == sender && m.Text == text {
			return true
		}
	}
	return false
}

// localID builds a client-generated message identifier from a timestamp,
// matching the shape of ids minted for optimistic appends.
func localID(t time.Time) string {
	return fmt.Sprintf("local_%d", t.UnixNano())
}
