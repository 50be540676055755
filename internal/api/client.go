// Package api is the HTTP client for the chatbot backend REST surface.
// Every call authenticates with the organization's API key in the
// X-API-Key header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/bayshore/chatwidget/internal/config"
	"github.com/bayshore/chatwidget/internal/logging"
)

// Client talks to the chatbot backend.
type Client struct {
	baseURL string
	embed   config.EmbedConfig
	http    *http.Client
	log     *logging.Logger

	mu  sync.RWMutex
	key string // effective key; switches to the fallback after a successful retry
}

// New creates a Client for the given backend origin and embed configuration.
func New(baseURL string, embed config.EmbedConfig, log *logging.Logger) *Client {
	return &Client{
		baseURL: config.NormalizeBaseURL(baseURL),
		embed:   embed,
		key:     embed.APIKey,
		http:    &http.Client{},
		log:     log.Sub("api"),
	}
}

// EffectiveKey returns the API key currently in use. It equals the embed
// key until a settings fetch succeeds only via the fallback key.
func (c *Client) EffectiveKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *Client) setEffectiveKey(key string) {
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path, key string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// post performs an authenticated JSON POST and decodes the body into out.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.EffectiveKey())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// History fetches the server-held conversation for a session.
func (c *Client) History(ctx context.Context, sessionID string) (ChatResponse, error) {
	var out ChatResponse
	if err := c.get(ctx, "/api/chatbot/history/"+sessionID, c.EffectiveKey(), &out); err != nil {
		return ChatResponse{}, fmt.Errorf("fetching history: %w", err)
	}
	return out, nil
}

// Ask sends user text and returns the bot's structured reply.
func (c *Client) Ask(ctx context.Context, question, sessionID string) (ChatResponse, error) {
	var out ChatResponse
	err := c.post(ctx, "/api/chatbot/ask", askRequest{
		Question:  question,
		SessionID: sessionID,
	}, &out)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("ask: %w", err)
	}
	return out, nil
}

// ConfirmationSentence renders the natural-language question sent for a
// slot confirmation turn.
func ConfirmationSentence(slot SlotConfirmation) string {
	return fmt.Sprintf("I want to confirm my appointment for %s at %s (ID: %s)",
		slot.Day, slot.Time, slot.SlotID)
}

// ConfirmSlot books an appointment slot. Confirmation is an ordinary chat
// turn with structured metadata, not a distinct endpoint: the question is a
// synthesized natural-language sentence.
func (c *Client) ConfirmSlot(ctx context.Context, sessionID string, slot SlotConfirmation) (ChatResponse, error) {
	question := ConfirmationSentence(slot)

	var out ChatResponse
	err := c.post(ctx, "/api/chatbot/ask", askRequest{
		Question:         question,
		SessionID:        sessionID,
		SlotConfirmation: &slot,
	}, &out)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("confirming slot: %w", err)
	}
	return out, nil
}
