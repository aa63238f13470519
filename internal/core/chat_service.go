package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

const (
	ApologyMessage = "Sorry, I encountered an error."

	AssistantPersonaID = "wodo-ai" // not a valid username
	maxMessageLength   = 2000
)

// AssistantPersona is the built-in general assistant every account can
// talk to.
var AssistantPersona = store.Persona{
	ID:           AssistantPersonaID,
	Name:         "Wodo AI",
	StorySummary: "Your friendly Wodo assistant.",
	StoryDetail:  "Wodo is a friendly and helpful AI assistant.",
}

type ChatService struct {
	repo     *store.ConversationRepository
	personas PersonaGenerator
	events   events.Publisher
	now      func() time.Time
}

// PersonaFromFriend builds the chat counterpart for a saved friend.
func PersonaFromFriend(f store.Friend) store.Persona {
	return store.Persona{
		ID:           f.ID,
		Name:         f.Name,
		StorySummary: f.StorySummary,
		StoryDetail:  fmt.Sprintf("You are friends with %s. Their story is: \"%s\"", f.Name, f.StorySummary),
	}
}

// StartConversation returns owner's conversation with p, creating it when
// there is none. A non-empty seed becomes the persona's opening message on
// creation. The second result reports whether it was created.
func (s *ChatService) StartConversation(ctx context.Context, owner string, p store.Persona, seed string) (*store.Conversation, bool, error) {
	var msg *store.ChatMessage
	if seed = strings.TrimSpace(seed); seed != "" {
		msg = &store.ChatMessage{Sender: store.SenderAI, Text: seed, Timestamp: millis(s.now())}
	}
	return s.startConversation(ctx, owner, p, msg)
}

// startConversation is StartConversation with an explicit seed message.
// An existing conversation gets the seed appended unless an identical
// message is already in it, so replaying the same seed is harmless.
func (s *ChatService) startConversation(ctx context.Context, owner string, p store.Persona, seed *store.ChatMessage) (*store.Conversation, bool, error) {
	if p.ID == "" {
		return nil, false, invalid("persona.id", "persona id is required")
	}
	if p.ID == owner {
		return nil, false, invalid("persona.id", "you cannot chat with yourself")
	}

	var result store.Conversation
	created, appended := false, false
	_, err := s.repo.Update(ctx, owner, func(all []store.Conversation) ([]store.Conversation, error) {
		for i := range all {
			if all[i].Persona.ID != p.ID {
				continue
			}
			if seed != nil && !containsMessage(all[i].Messages, *seed) {
				all[i].Messages = append(all[i].Messages, *seed)
				all[i].UpdatedAt = millis(s.now())
				appended = true
			}
			result = all[i]
			return all, nil
		}
		ts := millis(s.now())
		result = store.Conversation{
			ID:        uuid.NewString(),
			Owner:     owner,
			Persona:   p,
			Messages:  []store.ChatMessage{},
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if seed != nil {
			result.Messages = append(result.Messages, *seed)
		}
		created = true
		return append(all, result), nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to start conversation: %w", err)
	}
	if created || appended {
		s.events.Publish(owner, events.Event{Type: events.ConversationsChanged, SubjectID: result.ID})
	}
	return &result, created, nil
}

func containsMessage(msgs []store.ChatMessage, m store.ChatMessage) bool {
	for _, existing := range msgs {
		if existing == m {
			return true
		}
	}
	return false
}

// List returns owner's conversations, most recently active first.
func (s *ChatService) List(ctx context.Context, owner string) ([]store.Conversation, error) {
	all, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt > all[j].UpdatedAt
	})
	return all, nil
}

func (s *ChatService) Get(ctx context.Context, owner, id string) (*store.Conversation, error) {
	all, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "conversation", ID: id}
}

func (s *ChatService) appendMessage(ctx context.Context, owner, id string, msg store.ChatMessage) (*store.Conversation, error) {
	var result store.Conversation
	_, err := s.repo.Update(ctx, owner, func(all []store.Conversation) ([]store.Conversation, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			all[i].Messages = append(all[i].Messages, msg)
			all[i].UpdatedAt = msg.Timestamp
			result = all[i]
			return all, nil
		}
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PostMessage stores the user's message, asks the persona for a reply and
// stores that too. A failed model call is answered with ApologyMessage so
// the conversation stays usable.
func (s *ChatService) PostMessage(ctx context.Context, owner, conversationID, text string) (*store.Conversation, *store.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, invalid("text", "message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, nil, invalid("text", fmt.Sprintf("message cannot exceed %d characters", maxMessageLength))
	}

	conv, err := s.appendMessage(ctx, owner, conversationID, store.ChatMessage{
		Sender:    store.SenderUser,
		Text:      text,
		Timestamp: millis(s.now()),
	})
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to store user message: %w", err)
	}

	var replyText string
	if conv.Persona.ID == AssistantPersonaID {
		replyText, err = s.personas.GenerateAssistantReply(ctx, conv.Messages)
	} else {
		replyText, err = s.personas.GenerateReply(ctx, conv.Persona, conv.Messages)
	}
	if err != nil {
		logging.Errorf("Error generating reply for conversation %s: %v", conversationID, err)
		replyText = ApologyMessage
	}

	reply := store.ChatMessage{Sender: store.SenderAI, Text: replyText, Timestamp: millis(s.now())}
	// the request may have been cancelled while the model was answering
	conv, err = s.appendMessage(context.WithoutCancel(ctx), owner, conversationID, reply)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store reply: %w", err)
	}

	s.events.Publish(owner, events.Event{Type: events.ConversationsChanged, SubjectID: conversationID})
	return conv, &reply, nil
}

// Assistant returns owner's conversation with the Wodo assistant.
func (s *ChatService) Assistant(ctx context.Context, owner string) (*store.Conversation, error) {
	conv, _, err := s.StartConversation(ctx, owner, AssistantPersona, "")
	return conv, err
}

func (s *ChatService) PostAssistantMessage(ctx context.Context, owner, text string) (*store.Conversation, *store.ChatMessage, error) {
	conv, err := s.Assistant(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	return s.PostMessage(ctx, owner, conv.ID, text)
}
