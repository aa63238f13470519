package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wodo.ai/wodo-connect/internal/store"
)

func TestFriendService_AddIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	maria := store.Friend{ID: "u_ax8h3", Name: "Maria", StorySummary: "Hiker"}

	added, err := f.svc.Friends.Add(ctx, "alice", maria)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.svc.Friends.Add(ctx, "alice", maria)
	require.NoError(t, err)
	assert.False(t, added)

	list, err := f.svc.Friends.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []store.Friend{maria}, list)
}

func TestFriendService_RemoveKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := f.svc.Friends.Add(ctx, "alice", store.Friend{ID: id, Name: id})
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.Friends.Remove(ctx, "alice", "b"))
	require.NoError(t, f.svc.Friends.Remove(ctx, "alice", "missing"))

	list, err := f.svc.Friends.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)
}

func TestBefriend_AIPersonaAddedDirectly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := store.Persona{ID: "u_f9k2l", Name: "Maria", StorySummary: "Mountain photographer."}

	res, err := f.svc.Friends.Befriend(ctx, alice, p)
	require.NoError(t, err)
	require.NotNil(t, res.Friend)
	assert.Nil(t, res.Request)
	assert.True(t, res.Created)

	ok, err := f.svc.Friends.IsFriend(ctx, "alice", "u_f9k2l")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Friends.Befriend(ctx, alice, p)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBefriend_RealPersonGetsFriendRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Friends.Befriend(ctx, alice, store.Persona{ID: "bob", Name: "Bob"})
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Nil(t, res.Friend)
	assert.Equal(t, store.RequestFriend, res.Request.Type)
	assert.Equal(t, "Alice wants to be your friend.", res.Request.Message)

	list, err := f.svc.Friends.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is added until bob accepts")

	again, err := f.svc.Friends.Befriend(ctx, alice, store.Persona{ID: "bob", Name: "Bob"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Request.ID, again.Request.ID)
}

func TestBefriend_Self(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Friends.Befriend(context.Background(), alice, store.Persona{ID: "alice", Name: "Alice"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
