package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wodo.ai/wodo-connect/internal/store"
)

var maria = store.Persona{ID: "u_f9k2l", Name: "Maria", StorySummary: "Hiker.", StoryDetail: "I hike mountains."}

func TestStartConversation_ReusesExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, first.Messages)

	f.clock.Advance(time.Minute)
	second, created, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "are you around?")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Messages, 1)
	assert.Equal(t, "are you around?", second.Messages[0].Text)
	assert.Equal(t, t0.Add(time.Minute).UnixMilli(), second.UpdatedAt)

	// the same seed at the same instant is not stored twice
	third, _, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "are you around?")
	require.NoError(t, err)
	assert.Len(t, third.Messages, 1)

	_, _, err = f.svc.Chats.StartConversation(ctx, "alice", store.Persona{ID: "alice"}, "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPostMessage_StoresBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv, _, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	updated, reply, err := f.svc.Chats.PostMessage(ctx, "alice", conv.ID, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Maria heard: hello", reply.Text)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, store.SenderUser, updated.Messages[0].Sender)
	assert.Equal(t, "hello", updated.Messages[0].Text)
	assert.Equal(t, store.SenderAI, updated.Messages[1].Sender)
	assert.Equal(t, t0.Add(time.Minute).UnixMilli(), updated.UpdatedAt)

	stored, err := f.svc.Chats.Get(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 2)
}

func TestPostMessage_ApologyOnModelFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.personas.Fail = true

	conv, _, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "")
	require.NoError(t, err)

	updated, reply, err := f.svc.Chats.PostMessage(ctx, "alice", conv.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, ApologyMessage, reply.Text)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, 1, f.personas.Calls, "no retries")

	// still usable afterwards
	f.personas.Fail = false
	_, reply, err = f.svc.Chats.PostMessage(ctx, "alice", conv.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, "Maria heard: again", reply.Text)
}

func TestPostMessage_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Chats.PostMessage(ctx, "alice", "missing", "hello")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	conv, _, err := f.svc.Chats.StartConversation(ctx, "alice", maria, "")
	require.NoError(t, err)
	_, _, err = f.svc.Chats.PostMessage(ctx, "alice", conv.ID, "   ")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	// the limit counts characters, not bytes
	_, _, err = f.svc.Chats.PostMessage(ctx, "alice", conv.ID, strings.Repeat("é", maxMessageLength))
	assert.NoError(t, err)
	_, _, err = f.svc.Chats.PostMessage(ctx, "alice", conv.ID, strings.Repeat("é", maxMessageLength+1))
	assert.ErrorAs(t, err, &ve)

	// conversations are private to their owner
	_, _, err = f.svc.Chats.PostMessage(ctx, "bob", conv.ID, "hello")
	assert.ErrorAs(t, err, &nf)
}

func TestAssistant_SingleConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv, reply, err := f.svc.Chats.PostAssistantMessage(ctx, "alice", "I started pottery")
	require.NoError(t, err)
	assert.Equal(t, AssistantPersonaID, conv.Persona.ID)
	assert.Equal(t, "Wodo reply #1", reply.Text)

	again, reply, err := f.svc.Chats.PostAssistantMessage(ctx, "alice", "tell me more")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
	assert.Equal(t, "Wodo reply #3", reply.Text)

	all, err := f.svc.Chats.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPersonaFromFriend(t *testing.T) {
	p := PersonaFromFriend(store.Friend{ID: "bob", Name: "Bob", StorySummary: "Runner"})
	assert.Equal(t, `You are friends with Bob. Their story is: "Runner"`, p.StoryDetail)
	assert.Equal(t, "bob", p.ID)
}
