package api

import (
	"context"
	"sort"
	"strings"
)

// DefaultWelcomeMessage is the greeting used when no instant reply is
// configured or the fetch fails.
const DefaultWelcomeMessage = "Hello! How can I help you today?"

// instantReplySentinel is placeholder text some backends return instead of
// an empty set; it is never shown.
const instantReplySentinel = "Welcome message not found."

// FetchInstantReplies fetches the organization's instant replies, sorted
// ascending by order with sentinel placeholders removed. An inactive
// feature or an empty set yields an empty slice, not an error.
func (c *Client) FetchInstantReplies(ctx context.Context) ([]InstantReply, error) {
	var resp instantReplyResponse
	if err := c.get(ctx, "/api/instant-reply", c.EffectiveKey(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || !resp.Data.IsActive {
		return nil, nil
	}

	msgs := make([]InstantReply, 0, len(resp.Data.Messages))
	for _, m := range resp.Data.Messages {
		if m.Message == instantReplySentinel {
			continue
		}
		msgs = append(msgs, m)
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Order < msgs[j].Order })
	return msgs, nil
}

// WelcomeMessage resolves the widget's greeting: the lowest-order active
// instant reply, else the static default. Single attempt, no fallback-key
// chain; any failure means the default.
func (c *Client) WelcomeMessage(ctx context.Context) string {
	msgs, err := c.FetchInstantReplies(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("welcome message fetch failed, using default")
		return DefaultWelcomeMessage
	}
	for _, m := range msgs {
		if strings.TrimSpace(m.Message) != "" {
			return m.Message
		}
	}
	return DefaultWelcomeMessage
}
