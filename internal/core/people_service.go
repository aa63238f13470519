package core

import (
	"context"
	"fmt"
	"strings"

	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
	"wodo.ai/wodo-connect/internal/utils"
)

const summaryLength = 80

// Person is a real account surfaced through its visible thought.
type Person struct {
	store.Persona
	ChatRequestSent   bool     `json:"chatRequestSent"`
	FriendRequestSent bool     `json:"friendRequestSent"`
	IsFriend          bool     `json:"isFriend"`
	Similarity        *float32 `json:"similarity,omitempty"`
}

// PeopleService lists the real people a user can reach out to.
type PeopleService struct {
	thoughts *ThoughtFeed
	requests *RequestLedger
	friends  *FriendService
	embedder Embedder
}

func summarize(text string) string {
	r := []rune(text)
	if len(r) > summaryLength {
		r = r[:summaryLength]
	}
	return string(r) + "..."
}

// ListPeople builds one Person per visible thought of someone other than
// actor, newest first. With a story and an embedder the list is instead
// ordered by how close each thought is to the story.
func (s *PeopleService) ListPeople(ctx context.Context, actor, story string) ([]Person, error) {
	thoughts, err := s.thoughts.ListVisible(ctx, actor)
	if err != nil {
		return nil, err
	}
	chatSent, err := s.requests.ListSentByType(ctx, actor, store.RequestChat)
	if err != nil {
		return nil, err
	}
	friendSent, err := s.requests.ListSentByType(ctx, actor, store.RequestFriend)
	if err != nil {
		return nil, err
	}
	friends, err := s.friends.List(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	isFriend := make(map[string]bool, len(friends))
	for _, f := range friends {
		isFriend[f.ID] = true
	}

	people := make([]Person, 0, len(thoughts))
	for _, t := range thoughts {
		people = append(people, Person{
			Persona: store.Persona{
				ID:           t.UserID,
				Name:         t.UserName,
				StorySummary: summarize(t.Text),
				StoryDetail:  t.Text,
			},
			ChatRequestSent:   chatSent[t.UserID],
			FriendRequestSent: friendSent[t.UserID],
			IsFriend:          isFriend[t.UserID],
		})
	}

	story = strings.TrimSpace(story)
	if story == "" || s.embedder == nil || len(people) < 2 {
		return people, nil
	}
	ranked, err := s.rank(ctx, story, people)
	if err != nil {
		logging.Warnf("Failed to rank people by story, keeping newest first: %v", err)
		return people, nil
	}
	return ranked, nil
}

func (s *PeopleService) rank(ctx context.Context, story string, people []Person) ([]Person, error) {
	query, err := s.embedder.Embed(ctx, story)
	if err != nil {
		return nil, fmt.Errorf("failed to embed story: %w", err)
	}

	vectors := make([][]float32, len(people))
	for i, p := range people {
		v, err := s.embedder.Embed(ctx, p.StoryDetail)
		if err != nil {
			logging.Debugf("Skipping embedding for %s: %v", p.ID, err)
			continue
		}
		vectors[i] = v
	}

	scored := utils.RankBySimilarity(query, vectors)
	out := make([]Person, 0, len(people))
	for _, sc := range scored {
		p := people[sc.Index]
		if vectors[sc.Index] != nil {
			score := sc.Score
			p.Similarity = &score
		}
		out = append(out, p)
	}
	return out, nil
}
