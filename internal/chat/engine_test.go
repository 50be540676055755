package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/logging"
	"github.com/bayshore/chatwidget/internal/realtime"
	"github.com/bayshore/chatwidget/internal/slots"
)

type stubBackend struct {
	mu          sync.Mutex
	historyResp api.ChatResponse
	historyErr  error
	askResp     api.ChatResponse
	askErr      error
	confirmResp api.ChatResponse
	confirmErr  error

	historyCalls int
	askQuestions []string
	confirmSlots []api.SlotConfirmation
}

func (s *stubBackend) History(ctx context.Context, sessionID string) (api.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyCalls++
	return s.historyResp, s.historyErr
}

func (s *stubBackend) Ask(ctx context.Context, question, sessionID string) (api.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.askQuestions = append(s.askQuestions, question)
	return s.askResp, s.askErr
}

func (s *stubBackend) ConfirmSlot(ctx context.Context, sessionID string, slot api.SlotConfirmation) (api.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmSlots = append(s.confirmSlots, slot)
	return s.confirmResp, s.confirmErr
}

func newTestEngine(t *testing.T, backend *stubBackend) *Engine {
	t.Helper()
	return NewEngine(backend, "sess-1", "Hello! How can I help you today?", logging.New(nil, "silent"))
}

func openReady(t *testing.T, e *Engine) {
	t.Helper()
	require.NoError(t, e.Open(context.Background()))
	require.Equal(t, StateReady, e.State())
}

func texts(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestOpenReplacesConversationWithHistory(t *testing.T) {
	backend := &stubBackend{
		historyResp: api.ChatResponse{
			UserData: api.UserData{ConversationHistory: []api.ConversationMessage{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello, how can I help?"},
			}},
		},
	}
	e := newTestEngine(t, backend)

	// a stale local entry must not survive a history load
	e.conv.Append(Message{ID: "stale", Text: e.Welcome(), Sender: SenderBot, Timestamp: time.Now()})

	openReady(t, e)

	got := e.Conversation().Messages()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"hi", "hello, how can I help?"}, texts(got))
	assert.Equal(t, SenderUser, got[0].Sender)
	assert.Equal(t, SenderBot, got[1].Sender)

	agent, _ := e.AgentMode()
	assert.False(t, agent)
}

func TestOpenRestoresAgentModeFromHistoryMetadata(t *testing.T) {
	backend := &stubBackend{
		historyResp: api.ChatResponse{
			UserData: api.UserData{ConversationHistory: []api.ConversationMessage{
				{Role: "assistant", Content: "a human here", Metadata: &api.MessageMetadata{Type: "agent_message", AgentID: "agent-9"}},
			}},
		},
	}
	e := newTestEngine(t, backend)
	openReady(t, e)

	agent, _ := e.AgentMode()
	assert.True(t, agent)
}

func TestOpenEmptyHistoryKeepsWelcome(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	openReady(t, e)

	assert.Zero(t, e.Conversation().Len())
	assert.Equal(t, "Hello! How can I help you today?", e.Welcome())
}

func TestHistoryFetchedOncePerOpenSession(t *testing.T) {
	backend := &stubBackend{}
	e := newTestEngine(t, backend)

	openReady(t, e)
	require.NoError(t, e.Open(context.Background())) // reopen while already open
	assert.Equal(t, 1, backend.historyCalls)

	e.Close()
	openReady(t, e)
	assert.Equal(t, 2, backend.historyCalls, "close resets the fetched flag")
}

func TestHistoryFailureDegradesToLocalLog(t *testing.T) {
	backend := &stubBackend{historyErr: errors.New("boom")}
	e := newTestEngine(t, backend)
	openReady(t, e)
	assert.Zero(t, e.Conversation().Len())
}

func TestSendAppendsUserAndBotMessages(t *testing.T) {
	backend := &stubBackend{askResp: api.ChatResponse{Answer: "sure, here you go"}}
	e := newTestEngine(t, backend)
	openReady(t, e)

	msg, err := e.Send(context.Background(), "help me")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "sure, here you go", msg.Text)

	got := e.Conversation().Messages()
	require.Len(t, got, 2)
	assert.Equal(t, SenderUser, got[0].Sender)
	assert.Equal(t, "help me", got[0].Text)
	assert.Equal(t, SenderBot, got[1].Sender)
	assert.False(t, e.Typing(), "typing cleared after the turn")
	assert.Equal(t, StateReady, e.State())
}

func TestSendFailureAppendsApologyAndClearsTyping(t *testing.T) {
	backend := &stubBackend{askErr: errors.New("network down")}
	e := newTestEngine(t, backend)
	openReady(t, e)

	msg, err := e.Send(context.Background(), "hello?")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, apologyText, msg.Text)

	got := e.Conversation().Messages()
	require.Len(t, got, 2)
	assert.Equal(t, apologyText, got[1].Text)
	assert.Equal(t, SenderBot, got[1].Sender)
	assert.False(t, e.Typing())
}

func TestAgentModeSuppressesAskAnswer(t *testing.T) {
	backend := &stubBackend{askResp: api.ChatResponse{Answer: "canned bot reply"}}
	e := newTestEngine(t, backend)
	openReady(t, e)
	e.AgentTakeover("agent-1")

	before := e.Conversation().Len()
	msg, err := e.Send(context.Background(), "is anyone there")
	require.NoError(t, err)
	assert.Nil(t, msg, "answer suppressed while an agent owns the session")
	// only the optimistic user message landed
	assert.Equal(t, before+1, e.Conversation().Len())

	// the human reply arrives over the push channel instead
	e.AgentNewMessage(realtime.AgentMessage{Role: "assistant", Content: "yes, agent here", AgentID: "agent-1"})
	got := e.Conversation().Messages()
	assert.Equal(t, "yes, agent here", got[len(got)-1].Text)
	assert.Equal(t, before+2, len(got))
}

func TestReplyFlipsAgentMode(t *testing.T) {
	backend := &stubBackend{askResp: api.ChatResponse{Answer: "x", AgentMode: true}}
	e := newTestEngine(t, backend)
	openReady(t, e)

	msg, err := e.Send(context.Background(), "talk to a human")
	require.NoError(t, err)
	assert.Nil(t, msg)
	agent, _ := e.AgentMode()
	assert.True(t, agent)
}

func TestPushedDuplicateWithinWindowIsDropped(t *testing.T) {
	backend := &stubBackend{askResp: api.ChatResponse{Answer: "your order shipped"}}
	e := newTestEngine(t, backend)
	openReady(t, e)

	base := time.Now()
	e.now = func() time.Time { return base }

	_, err := e.Send(context.Background(), "where is my order")
	require.NoError(t, err)
	require.Equal(t, 2, e.Conversation().Len())

	// same content pushed 3s later: inside the window, dropped
	e.now = func() time.Time { return base.Add(3 * time.Second) }
	e.AgentNewMessage(realtime.AgentMessage{Role: "assistant", Content: "your order shipped", AgentID: "agent-1"})
	assert.Equal(t, 2, e.Conversation().Len())

	// same content 7s later: outside the window, kept
	e.now = func() time.Time { return base.Add(7 * time.Second) }
	e.AgentNewMessage(realtime.AgentMessage{Role: "assistant", Content: "your order shipped", AgentID: "agent-1"})
	assert.Equal(t, 3, e.Conversation().Len())
}

func TestTakeoverAndReleaseAppendSystemMessages(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	openReady(t, e)

	e.AgentTakeover("agent-5")
	agent, id := e.AgentMode()
	assert.True(t, agent)
	assert.Equal(t, "agent-5", id)

	e.AgentRelease()
	agent, id = e.AgentMode()
	assert.False(t, agent)
	assert.Empty(t, id)

	got := texts(e.Conversation().Messages())
	require.Len(t, got, 2)
	assert.Equal(t, agentJoinedText, got[0])
	assert.Equal(t, agentReleasedText, got[1])
}

func TestSendWhileSendingReturnsErrBusy(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	openReady(t, e)

	// force the Sending state as if a turn were in flight
	e.mu.Lock()
	e.state = StateSending
	e.mu.Unlock()

	_, err := e.Send(context.Background(), "second send")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSendWhileClosedReturnsErrClosed(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	_, err := e.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendEmptyTextIsNoop(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	openReady(t, e)
	msg, err := e.Send(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Zero(t, e.Conversation().Len())
}

func TestSlotSelectionAndConfirmation(t *testing.T) {
	answer := "Available appointment slots\n📅 Monday, June 2\n- 10:00 AM (ID: slot_abc123)"
	backend := &stubBackend{
		askResp:     api.ChatResponse{Answer: answer},
		confirmResp: api.ChatResponse{Answer: "Your appointment is booked!"},
	}
	e := newTestEngine(t, backend)
	openReady(t, e)

	_, err := e.Send(context.Background(), "book me in")
	require.NoError(t, err)

	got := e.Conversation().Messages()
	require.Len(t, got[1].Slots, 1)
	slot := got[1].Slots[0]

	require.NoError(t, e.SelectSlot(slot))
	got = e.Conversation().Messages()
	require.NotNil(t, got[1].SelectedSlot)
	assert.True(t, got[1].AwaitingConfirmation)

	msg, err := e.ConfirmSlot(context.Background(), slot)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "Your appointment is booked!", msg.Text)

	got = e.Conversation().Messages()
	// confirmation turn appended the synthesized sentence as a user message
	assert.Equal(t, api.ConfirmationSentence(api.SlotConfirmation{
		SlotID: slot.ID, Day: slot.Day, Time: slot.Time,
	}), got[2].Text)
	assert.Equal(t, SenderUser, got[2].Sender)
	assert.True(t, got[1].Confirmed)
	assert.False(t, got[1].AwaitingConfirmation)

	require.Len(t, backend.confirmSlots, 1)
	assert.Equal(t, "slot_abc123", backend.confirmSlots[0].SlotID)
}

func TestConfirmSlotFailureAppendsBookingApology(t *testing.T) {
	backend := &stubBackend{confirmErr: errors.New("boom")}
	e := newTestEngine(t, backend)
	openReady(t, e)

	msg, err := e.ConfirmSlot(context.Background(), slots.Slot{ID: "slot_x", Day: "Monday", Time: "10:00 AM"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, bookingApologyText, msg.Text)
	assert.False(t, e.Typing())
}

func TestSelectSlotWithoutBotMessage(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	assert.ErrorIs(t, e.SelectSlot(slots.Slot{ID: "slot_x"}), ErrNoBotMessage)
}

func TestInstantReplyClickEngagesUser(t *testing.T) {
	backend := &stubBackend{askResp: api.ChatResponse{Answer: "hi!"}}
	e := newTestEngine(t, backend)
	openReady(t, e)

	_, err := e.SendInstantReply(context.Background(), "Do you offer consultations?")
	require.NoError(t, err)
	assert.True(t, e.UserEngaged())
	require.Len(t, backend.askQuestions, 1)
	assert.Equal(t, "Do you offer consultations?", backend.askQuestions[0])
}

func TestWelcomeTonePlaysOnce(t *testing.T) {
	e := newTestEngine(t, &stubBackend{})
	assert.True(t, e.ConsumeWelcomeTone())
	assert.False(t, e.ConsumeWelcomeTone())
}

func TestUpdateLastBotSkipsUserMessages(t *testing.T) {
	c := NewConversation()
	c.Append(Message{ID: "1", Sender: SenderBot, Text: "bot", Timestamp: time.Now()})
	c.Append(Message{ID: "2", Sender: SenderUser, Text: "user", Timestamp: time.Now()})

	ok := c.UpdateLastBot(func(m *Message) { m.Confirmed = true })
	require.True(t, ok)

	got := c.Messages()
	assert.True(t, got[0].Confirmed)
	assert.False(t, got[1].Confirmed)
}
