package folio

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Chat is a conversation with the assistant.
type Chat struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	IsArchived         bool            `json:"is_archived,omitempty"`
	MessageCount       int             `json:"message_count"`
	LastMessagePreview *MessagePreview `json:"last_message_preview,omitempty"`
}

// MessagePreview is the short form of a chat's newest message.
type MessagePreview struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatList is the list of active chats.
type ChatList struct {
	Chats []Chat `json:"chats"`
	Total int    `json:"total"`
}

// ChatDetail is a chat with its full message history.
type ChatDetail struct {
	Chat
	Messages []Message `json:"messages"`
}

const defaultChatTitle = "New Chat"

// ChatService manages chats. Authentication is optional.
type ChatService struct {
	c *Client
}

// Create starts a new chat. An empty title lets the server pick one.
func (s *ChatService) Create(ctx context.Context, title string, opts ...RequestOption) (*Chat, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	chat, err := doJSON[Chat](ctx, s.c, Request{Method: http.MethodPost, Path: "/api/chats/", Body: body}, opts...)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// List returns all active chats.
func (s *ChatService) List(ctx context.Context, opts ...RequestOption) (*ChatList, error) {
	chats, err := doJSON[[]Chat](ctx, s.c, Request{Path: "/api/chats/"}, opts...)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []Chat{}
	}
	return &ChatList{Chats: chats, Total: len(chats)}, nil
}

// Get returns a chat with its messages.
func (s *ChatService) Get(ctx context.Context, id string, opts ...RequestOption) (*ChatDetail, error) {
	chat, err := doJSON[ChatDetail](ctx, s.c, Request{Path: chatPath(id)}, opts...)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Update renames a chat.
func (s *ChatService) Update(ctx context.Context, id, title string, opts ...RequestOption) (*Chat, error) {
	chat, err := doJSON[Chat](ctx, s.c, Request{
		Method: http.MethodPut,
		Path:   chatPath(id),
		Body:   map[string]string{"title": title},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Delete archives a chat.
func (s *ChatService) Delete(ctx context.Context, id string, opts ...RequestOption) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: chatPath(id)}, opts...)
	return err
}

// Title returns the chat's title, or "New Chat" if it has none.
func (s *ChatService) Title(ctx context.Context, id string, opts ...RequestOption) (string, error) {
	chat, err := s.Get(ctx, id, opts...)
	if err != nil {
		return "", err
	}
	if chat.Title == "" {
		return defaultChatTitle, nil
	}
	return chat.Title, nil
}

// ValidateOwnership reports whether the current principal can read the chat.
// Any error, including network failures, yields false.
func (s *ChatService) ValidateOwnership(ctx context.Context, id string, opts ...RequestOption) bool {
	_, err := s.Get(ctx, id, opts...)
	return err == nil
}

func chatPath(id string) string {
	return "/api/chats/" + url.PathEscape(id)
}

func messagesPath(chatID string) string {
	return chatPath(chatID) + "/messages/"
}
