package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	titleLength   = 50
	previewLength = 100
)

func decode(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("invalid_json", "request body is not valid JSON")
	}
	return nil
}

func (s *Server) createChat(c *fiber.Ctx) error {
	var in struct {
		Title string `json:"title"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}

	now := s.now()
	ch := chat{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.threads.Put(ch.ID, thread{chat: ch})
	return c.Status(fiber.StatusCreated).JSON(ch)
}

func (s *Server) listChats(c *fiber.Ctx) error {
	threads := s.threads.List()
	chats := make([]chat, 0, len(threads))
	for _, t := range threads {
		chats = append(chats, t.chat)
	}
	slices.SortStableFunc(chats, func(a, b chat) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return c.JSON(chats)
}

func (s *Server) thread(c *fiber.Ctx) (thread, error) {
	id := c.Params("id")
	t, ok := s.threads.Get(id)
	if !ok {
		return thread{}, notFound("chat %s not found", id)
	}
	return t, nil
}

func (s *Server) getChat(c *fiber.Ctx) error {
	t, err := s.thread(c)
	if err != nil {
		return err
	}
	return c.JSON(chatDetail{chat: t.chat, Messages: nonNil(t.messages)})
}

func (s *Server) updateChat(c *fiber.Ctx) error {
	var in struct {
		Title string `json:"title"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return badRequest("validation_error", "title is required")
	}

	id := c.Params("id")
	t, ok := s.threads.Update(id, func(t thread) thread {
		t.chat.Title = title
		t.chat.UpdatedAt = s.now()
		return t
	})
	if !ok {
		return notFound("chat %s not found", id)
	}
	return c.JSON(t.chat)
}

func (s *Server) deleteChat(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.threads.Delete(id) {
		return notFound("chat %s not found", id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var in struct {
		Content string `json:"content"`
	}
	if err := decode(c, &in); err != nil {
		return err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return badRequest("validation_error", "content is required")
	}

	id := c.Params("id")
	now := s.now()
	user := message{
		ID:        uuid.NewString(),
		Chat:      id,
		Role:      "user",
		Content:   content,
		CreatedAt: now,
		Metadata:  map[string]any{},
	}
	reply := message{
		ID:        uuid.NewString(),
		Chat:      id,
		Role:      "assistant",
		Content:   assistantReply(content),
		CreatedAt: now,
		Metadata:  map[string]any{"model": "mock", "tokens": utf8.RuneCountInString(content)},
	}

	_, ok := s.threads.Update(id, func(t thread) thread {
		t.messages = append(slices.Clip(t.messages), user, reply)
		if t.chat.Title == "" {
			t.chat.Title = truncate(content, titleLength)
		}
		t.chat.MessageCount = len(t.messages)
		t.chat.UpdatedAt = now
		t.chat.LastMessagePreview = &messagePreview{
			Role:      reply.Role,
			Content:   truncate(reply.Content, previewLength),
			CreatedAt: reply.CreatedAt,
		}
		return t
	})
	if !ok {
		return notFound("chat %s not found", id)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_message": user,
		"ai_message":   reply,
	})
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	t, err := s.thread(c)
	if err != nil {
		return err
	}
	return c.JSON(nonNil(t.messages))
}

func (s *Server) clearMessages(c *fiber.Ctx) error {
	id := c.Params("id")
	_, ok := s.threads.Update(id, func(t thread) thread {
		t.messages = nil
		t.chat.MessageCount = 0
		t.chat.LastMessagePreview = nil
		t.chat.UpdatedAt = s.now()
		return t
	})
	if !ok {
		return notFound("chat %s not found", id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func assistantReply(question string) string {
	return fmt.Sprintf("### Portfolio assistant\n\nYou asked: *%s*\n\n"+
		"- This answer comes from the Folio mock backend.\n"+
		"- Connect a live backend for real analysis of your holdings.\n", question)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
