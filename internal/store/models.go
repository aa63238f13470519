package store

import (
	"strings"
	"time"
)

// AIPersonaPrefix marks persona ids that were produced by the text model
// rather than belonging to a real account.
const AIPersonaPrefix = "u_"

type UserAccount struct {
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"` // lower-cased, unique
}

// Persona is a chat counterpart: a real account (ID == username) or an
// AI-generated profile (ID starts with AIPersonaPrefix).
type Persona struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	StorySummary string `json:"storySummary" yaml:"story_summary"`
	StoryDetail  string `json:"storyDetail" yaml:"story_detail"`
}

// IsAI reports whether the persona is synthetic.
func (p Persona) IsAI() bool {
	return IsAIPersonaID(p.ID)
}

func IsAIPersonaID(id string) bool {
	return strings.HasPrefix(id, AIPersonaPrefix)
}

type TodaysThought struct {
	ID        string `json:"id" yaml:"id"`
	UserID    string `json:"userId" yaml:"user_id"`
	UserName  string `json:"userName" yaml:"user_name"`
	Text      string `json:"text" yaml:"text"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // unix millis
}

func (t TodaysThought) PostedAt() time.Time {
	return time.UnixMilli(t.Timestamp)
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

type RequestType string

const (
	RequestChat   RequestType = "chat"
	RequestFriend RequestType = "friend"
)

// Valid reports whether t is a known request type. The zero value is
// treated as chat by readers, matching records written before types existed.
func (t RequestType) Valid() bool {
	return t == RequestChat || t == RequestFriend
}

type ChatRequest struct {
	ID         string        `json:"id" yaml:"id"`
	SenderID   string        `json:"senderId" yaml:"sender_id"`
	SenderName string        `json:"senderName" yaml:"sender_name"`
	ReceiverID string        `json:"receiverId" yaml:"receiver_id"`
	Status     RequestStatus `json:"status" yaml:"status"`
	Timestamp  int64         `json:"timestamp" yaml:"timestamp"` // unix millis
	Type       RequestType   `json:"type" yaml:"type"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// EffectiveType returns the request type, defaulting untyped records to chat.
func (r ChatRequest) EffectiveType() RequestType {
	if r.Type == "" {
		return RequestChat
	}
	return r.Type
}

type Friend struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	StorySummary string `json:"storySummary" yaml:"story_summary"`
}

type Session struct {
	ID        string      `json:"id"`
	Account   UserAccount `json:"account"`
	CreatedAt int64       `json:"createdAt"` // unix millis
}

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type ChatMessage struct {
	Sender    string `json:"sender" yaml:"sender"` // "user" or "ai"
	Text      string `json:"text" yaml:"text"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// Conversation is one owner's transcript with a single persona.
type Conversation struct {
	ID        string        `json:"id" yaml:"id"`
	Owner     string        `json:"owner" yaml:"owner"`
	Persona   Persona       `json:"persona" yaml:"persona"`
	Messages  []ChatMessage `json:"messages" yaml:"messages"`
	CreatedAt int64         `json:"createdAt" yaml:"created_at"`
	UpdatedAt int64         `json:"updatedAt" yaml:"updated_at"`
}
