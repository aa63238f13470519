package core

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/store"
)

const DefaultThoughtTTL = 24 * time.Hour

// PersonaGenerator produces AI personas and their replies. LLMService is
// the production implementation.
type PersonaGenerator interface {
	GenerateMatches(ctx context.Context, story string) ([]store.Persona, error)
	GenerateReply(ctx context.Context, persona store.Persona, history []store.ChatMessage) (string, error)
	GenerateAssistantReply(ctx context.Context, history []store.ChatMessage) (string, error)
}

// Embedder is optional; when the generator also implements it the people
// list can be ranked against a story.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	ThoughtTTL time.Duration
	Now        func() time.Time
}

// Services wires every service over one store.
type Services struct {
	Profiles  *ProfileService
	Thoughts  *ThoughtFeed
	Requests  *RequestLedger
	Friends   *FriendService
	Chats     *ChatService
	People    *PeopleService
	Dashboard *DashboardService
	Personas  PersonaGenerator
}

func NewServices(st *store.Store, gen PersonaGenerator, pub events.Publisher, opts Options) *Services {
	if opts.ThoughtTTL <= 0 {
		opts.ThoughtTTL = DefaultThoughtTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if pub == nil {
		pub = events.Discard{}
	}

	thoughts := &ThoughtFeed{repo: st.Thoughts, events: pub, now: opts.Now, ttl: opts.ThoughtTTL}
	chats := &ChatService{repo: st.Conversations, personas: gen, events: pub, now: opts.Now}
	friends := &FriendService{repo: st.Friends, events: pub}
	requests := &RequestLedger{repo: st.Requests, friends: friends, chats: chats, events: pub, now: opts.Now}
	friends.requests = requests

	var embedder Embedder
	if e, ok := gen.(Embedder); ok {
		embedder = e
	}

	return &Services{
		Profiles: &ProfileService{
			accounts: st.Accounts,
			sessions: st.Sessions,
			requests: requests,
			now:      opts.Now,
		},
		Thoughts: thoughts,
		Requests: requests,
		Friends:  friends,
		Chats:    chats,
		People: &PeopleService{
			thoughts: thoughts,
			requests: requests,
			friends:  friends,
			embedder: embedder,
		},
		Dashboard: &DashboardService{
			requests: requests,
			friends:  friends,
			thoughts: thoughts,
		},
		Personas: gen,
	}
}

// newID returns prefix followed by a short random suffix, e.g. req_3hB9...
func newID(prefix string) string {
	return prefix + shortuuid.New()
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}
