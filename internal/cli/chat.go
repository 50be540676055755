package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bayshore/chatwidget/internal/api"
	"github.com/bayshore/chatwidget/internal/chat"
	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/identity"
	"github.com/bayshore/chatwidget/internal/realtime"
	"github.com/bayshore/chatwidget/internal/slots"
	"github.com/bayshore/chatwidget/internal/store"
)

func newChatCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the configured bot from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if apiKey != "" {
				cfg.API.Key = apiKey
			}
			if cfg.API.Key == "" {
				return config.ErrNoAPIKey
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "organization API key (overrides config)")
	return cmd
}

func runChat(ctx context.Context, cfg config.Config) error {
	kv, err := store.Open(cfg.State, paths, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	ident := identity.NewProvider(kv, log)
	sessionID := ident.GetOrCreateSessionID(ctx)
	client := api.New(cfg.API.BaseURL, embedFromConfig(cfg), log)

	settings := client.ResolveSettings(ctx)
	welcome := client.WelcomeMessage(ctx)
	engine := chat.NewEngine(client, sessionID, welcome, log)

	handler := &terminalHandler{engine: engine}
	listener := realtime.New(cfg.API.SocketURL, client.EffectiveKey(), sessionID, handler, log)
	listener.Start()
	defer listener.Close()

	scanner := bufio.NewScanner(os.Stdin)

	// Collapsed phase: tooltip rotation and instant-reply popups run
	// until the visitor types, unless the widget auto-opens.
	var pending string
	var pickedReply bool
	if !cfg.Widget.AutoOpen && !settings.AutoOpen {
		texts := replyTexts(ctx, client)
		pending, pickedReply = closedPhase(scanner, texts)
	}

	if !ident.HasVisited(ctx) {
		ident.MarkVisited(ctx)
	}
	if err := engine.Open(ctx); err != nil {
		return err
	}
	if engine.ConsumeWelcomeTone() && welcomeSoundOn(settings) {
		fmt.Print("\a")
	}

	fmt.Printf("%s  (session %s)\n", settings.Name, sessionID)
	for _, m := range engine.Conversation().Messages() {
		printMessage(m)
	}
	if engine.Conversation().Len() == 0 {
		fmt.Printf("bot> %s\n", engine.Welcome())
	}
	fmt.Println(`type a message, or /book <slot-id> to confirm an appointment, /quit to leave`)

	if pending != "" {
		if pickedReply {
			if err := sendInstantReply(ctx, engine, pending); err != nil {
				return err
			}
		} else if done, err := handleLine(ctx, engine, pending); done || err != nil {
			return err
		}
	}

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		done, err := handleLine(ctx, engine, strings.TrimSpace(scanner.Text()))
		if done || err != nil {
			return err
		}
	}
}

// replyTexts fetches the instant replies to surface while collapsed. A
// fetch failure means no popups, never an error.
func replyTexts(ctx context.Context, client *api.Client) []string {
	replies, err := client.FetchInstantReplies(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("instant replies unavailable")
		return nil
	}
	texts := make([]string, len(replies))
	for i, r := range replies {
		texts[i] = r.Message
	}
	return texts
}

// closedPhase runs the collapsed-widget loops until the visitor types a
// line. A number picks the matching instant reply; anything else is the
// first message. Both loops stop before the panel opens.
func closedPhase(scanner *bufio.Scanner, texts []string) (string, bool) {
	rotator := chat.NewTooltipRotator(func(text string) {
		fmt.Printf("tip> %s\n", text)
	})
	loop := chat.NewReplyLoop(texts, func(shown []string) {
		for i, t := range shown {
			fmt.Printf("  [%d] %s\n", i+1, t)
		}
	}, nil)
	rotator.Start()
	loop.Start()
	defer rotator.Stop()
	defer loop.Stop()

	fmt.Println("press Enter to open the chat, pick a reply number, or start typing")
	if !scanner.Scan() {
		return "", false
	}
	return pickInstantReply(strings.TrimSpace(scanner.Text()), texts)
}

// pickInstantReply maps the visitor's first line onto the popup stack: a
// number in range selects that reply, anything else passes through as
// typed text.
func pickInstantReply(line string, texts []string) (string, bool) {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(texts) {
		return texts[n-1], true
	}
	return line, false
}

// welcomeSoundOn reports whether settings enable the welcome chime.
func welcomeSoundOn(s api.Settings) bool {
	return s.Sounds != nil && s.Sounds.Enabled &&
		s.Sounds.WelcomeSound != nil && s.Sounds.WelcomeSound.Enabled
}

func sendInstantReply(ctx context.Context, engine *chat.Engine, text string) error {
	fmt.Printf("you> %s\n", text)
	msg, err := engine.SendInstantReply(ctx, text)
	if err != nil {
		return err
	}
	if msg != nil {
		printMessage(*msg)
	}
	return nil
}

// handleLine dispatches one line of input. done reports that the visitor
// asked to leave.
func handleLine(ctx context.Context, engine *chat.Engine, line string) (done bool, err error) {
	switch {
	case line == "":
		return false, nil
	case line == "/quit" || line == "/exit":
		return true, nil
	case strings.HasPrefix(line, "/book "):
		if err := bookSlot(ctx, engine, strings.TrimSpace(strings.TrimPrefix(line, "/book "))); err != nil {
			fmt.Println("error:", err)
		}
		return false, nil
	default:
		msg, err := engine.Send(ctx, line)
		if errors.Is(err, chat.ErrBusy) {
			fmt.Println("still waiting on the previous reply")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if msg != nil {
			printMessage(*msg)
		} else if agent, _ := engine.AgentMode(); agent {
			fmt.Println("(an agent has your message; replies arrive live)")
		}
		return false, nil
	}
}

// bookSlot finds the offered slot by id, selects it, and confirms it as a
// chat turn.
func bookSlot(ctx context.Context, engine *chat.Engine, slotID string) error {
	var target *slots.Slot
	for _, m := range engine.Conversation().Messages() {
		for i := range m.Slots {
			if m.Slots[i].ID == slotID {
				target = &m.Slots[i]
			}
		}
	}
	if target == nil {
		return fmt.Errorf("no offered slot with id %q", slotID)
	}

	if err := engine.SelectSlot(*target); err != nil {
		return err
	}
	msg, err := engine.ConfirmSlot(ctx, *target)
	if err != nil {
		return err
	}
	if msg != nil {
		printMessage(*msg)
	}
	return nil
}

func printMessage(m chat.Message) {
	fmt.Printf("%s> %s\n", m.Sender, m.Text)
	for _, s := range m.Slots {
		fmt.Printf("      slot %s: %s at %s\n", s.ID, s.Day, s.Time)
	}
}

// terminalHandler feeds push events through the engine and echoes the
// resulting log entries to the terminal.
type terminalHandler struct {
	engine *chat.Engine
}

func (h *terminalHandler) AgentTakeover(agentID string) {
	h.engine.AgentTakeover(agentID)
	h.printLast()
}

func (h *terminalHandler) AgentRelease() {
	h.engine.AgentRelease()
	h.printLast()
}

func (h *terminalHandler) AgentNewMessage(msg realtime.AgentMessage) {
	before := h.engine.Conversation().Len()
	h.engine.AgentNewMessage(msg)
	if h.engine.Conversation().Len() > before {
		h.printLast()
	}
}

func (h *terminalHandler) printLast() {
	msgs := h.engine.Conversation().Messages()
	if len(msgs) > 0 {
		fmt.Println()
		printMessage(msgs[len(msgs)-1])
		fmt.Print("you> ")
	}
}
