package folio

import (
	"context"
	"net/http"
	"time"
)

// Message is one entry in a chat.
type Message struct {
	ID        string         `json:"id"`
	Chat      string         `json:"chat"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
}

// SendMessageResponse is the stored user message and the assistant's reply.
type SendMessageResponse struct {
	UserMessage Message `json:"user_message"`
	AIMessage   Message `json:"ai_message"`
}

// MessageService reads and writes chat messages. Authentication is optional.
type MessageService struct {
	c *Client
}

// Send posts content to a chat and returns the assistant's reply along with
// the stored user message.
func (s *MessageService) Send(ctx context.Context, chatID, content string, opts ...RequestOption) (*SendMessageResponse, error) {
	resp, err := doJSON[SendMessageResponse](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   messagesPath(chatID),
		Body:   map[string]string{"content": content},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns every message in a chat, oldest first.
func (s *MessageService) List(ctx context.Context, chatID string, opts ...RequestOption) ([]Message, error) {
	msgs, err := doJSON[[]Message](ctx, s.c, Request{Path: messagesPath(chatID)}, opts...)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Clear deletes all messages in a chat.
func (s *MessageService) Clear(ctx context.Context, chatID string, opts ...RequestOption) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: messagesPath(chatID)}, opts...)
	return err
}

// Latest returns the newest message, or nil for an empty chat.
func (s *MessageService) Latest(ctx context.Context, chatID string, opts ...RequestOption) (*Message, error) {
	msgs, err := s.List(ctx, chatID, opts...)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[len(msgs)-1], nil
}

// Count returns the number of messages in a chat.
func (s *MessageService) Count(ctx context.Context, chatID string, opts ...RequestOption) (int, error) {
	msgs, err := s.List(ctx, chatID, opts...)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// Page returns one page of messages. The server has no paging, so the full
// list is fetched and sliced. page is 1-based; out-of-range pages are empty.
func (s *MessageService) Page(ctx context.Context, chatID string, page, limit int, opts ...RequestOption) ([]Message, error) {
	msgs, err := s.List(ctx, chatID, opts...)
	if err != nil {
		return nil, err
	}
	return paginate(msgs, page, limit), nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 || limit < 1 {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
