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

func TestListPeople_FromVisibleThoughts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := store.UserAccount{Name: "Carol", Username: "carol"}
	long := strings.Repeat("x", 100)

	_, err := f.svc.Thoughts.Post(ctx, bob, "short thought")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Thoughts.Post(ctx, carol, long)
	require.NoError(t, err)
	_, err = f.svc.Thoughts.Post(ctx, alice, "my own thought")
	require.NoError(t, err)

	_, _, err = f.svc.Requests.CreateRequest(ctx, alice, "bob", store.RequestChat, "")
	require.NoError(t, err)
	_, err = f.svc.Friends.Add(ctx, "alice", store.Friend{ID: "carol", Name: "Carol"})
	require.NoError(t, err)

	people, err := f.svc.People.ListPeople(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "carol", people[0].ID)
	assert.Equal(t, strings.Repeat("x", 80)+"...", people[0].StorySummary)
	assert.Equal(t, long, people[0].StoryDetail)
	assert.True(t, people[0].IsFriend)

	assert.Equal(t, "bob", people[1].ID)
	assert.Equal(t, "short thought...", people[1].StorySummary)
	assert.True(t, people[1].ChatRequestSent)
	assert.False(t, people[1].FriendRequestSent)
}

func TestListPeople_RankedByStory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Thoughts.Post(ctx, bob, "ran a marathon")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Thoughts.Post(ctx, store.UserAccount{Name: "Cassie", Username: "cassie"}, "learning pottery")
	require.NoError(t, err)

	f.personas.Vectors["I love running"] = []float32{1, 0}
	f.personas.Vectors["ran a marathon"] = []float32{0.9, 0.1}
	f.personas.Vectors["learning pottery"] = []float32{0, 1}

	people, err := f.svc.People.ListPeople(ctx, "alice", "I love running")
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "bob", people[0].ID)
	require.NotNil(t, people[0].Similarity)
	assert.Greater(t, *people[0].Similarity, *people[1].Similarity)
}

func TestListPeople_RankingFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Thoughts.Post(ctx, bob, "ran a marathon")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Thoughts.Post(ctx, store.UserAccount{Name: "Cassie", Username: "cassie"}, "learning pottery")
	require.NoError(t, err)

	// no vector for the story: keep newest first
	people, err := f.svc.People.ListPeople(ctx, "alice", "unknown story")
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "cassie", people[0].ID)
	assert.Nil(t, people[0].Similarity)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.account(t, "Alice", "alice") // welcome request from cassie

	_, _, err := f.svc.Requests.CreateRequest(ctx, bob, "alice", store.RequestFriend, "")
	require.NoError(t, err)
	_, err = f.svc.Friends.Add(ctx, "alice", store.Friend{ID: "u_1", Name: "Maria"})
	require.NoError(t, err)
	_, err = f.svc.Thoughts.Post(ctx, alice, "today")
	require.NoError(t, err)

	sum, err := f.svc.Dashboard.Summary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.PendingRequests)
	assert.Equal(t, 1, sum.PendingChatRequests)
	assert.Equal(t, 1, sum.PendingFriendRequests)
	assert.Equal(t, 1, sum.FriendCount)
	require.NotNil(t, sum.LatestThought)
	assert.Equal(t, "today", sum.LatestThought.Text)
}
