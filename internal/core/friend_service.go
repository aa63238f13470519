package core

import (
	"context"
	"fmt"

	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/store"
)

type FriendService struct {
	repo     *store.FriendRepository
	requests *RequestLedger
	events   events.Publisher
}

// Add appends friend to owner's list. It is a no-op, reporting false, when
// the id is already there.
func (s *FriendService) Add(ctx context.Context, owner string, friend store.Friend) (bool, error) {
	added := false
	_, err := s.repo.Update(ctx, owner, func(list []store.Friend) ([]store.Friend, error) {
		for _, f := range list {
			if f.ID == friend.ID {
				return list, nil
			}
		}
		added = true
		return append(list, friend), nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to add friend: %w", err)
	}
	if added {
		s.events.Publish(owner, events.Event{Type: events.FriendsChanged, SubjectID: friend.ID})
	}
	return added, nil
}

// Remove drops friendID from owner's list. Removing an absent id is fine.
func (s *FriendService) Remove(ctx context.Context, owner, friendID string) error {
	_, err := s.repo.Update(ctx, owner, func(list []store.Friend) ([]store.Friend, error) {
		kept := list[:0]
		for _, f := range list {
			if f.ID != friendID {
				kept = append(kept, f)
			}
		}
		return kept, nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	s.events.Publish(owner, events.Event{Type: events.FriendsChanged, SubjectID: friendID})
	return nil
}

func (s *FriendService) List(ctx context.Context, owner string) ([]store.Friend, error) {
	return s.repo.List(ctx, owner)
}

func (s *FriendService) IsFriend(ctx context.Context, owner, id string) (bool, error) {
	list, err := s.repo.List(ctx, owner)
	if err != nil {
		return false, err
	}
	for _, f := range list {
		if f.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// addMutual records an accepted friend request on both sides.
func (s *FriendService) addMutual(ctx context.Context, accepter store.UserAccount, req store.ChatRequest) error {
	if _, err := s.Add(ctx, accepter.Username, store.Friend{
		ID:           req.SenderID,
		Name:         req.SenderName,
		StorySummary: acceptedFriendSummary,
	}); err != nil {
		return err
	}
	_, err := s.Add(ctx, req.SenderID, store.Friend{
		ID:           accepter.Username,
		Name:         accepter.Name,
		StorySummary: acceptedFriendSummary,
	})
	return err
}

// BefriendResult tells the caller which path Befriend took.
type BefriendResult struct {
	Friend  *store.Friend      `json:"friend,omitempty"`
	Request *store.ChatRequest `json:"request,omitempty"`
	Created bool               `json:"created"`
}

// Befriend adds an AI persona straight to actor's friends; a real person
// gets a friend request instead.
func (s *FriendService) Befriend(ctx context.Context, actor store.UserAccount, p store.Persona) (*BefriendResult, error) {
	if p.ID == "" {
		return nil, invalid("id", "persona id is required")
	}
	if p.ID == actor.Username {
		return nil, invalid("id", "you cannot add yourself as a friend")
	}
	already, err := s.IsFriend(ctx, actor.Username, p.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, invalid("id", "already friends")
	}

	if p.IsAI() {
		f := store.Friend{ID: p.ID, Name: p.Name, StorySummary: p.StorySummary}
		added, err := s.Add(ctx, actor.Username, f)
		if err != nil {
			return nil, err
		}
		return &BefriendResult{Friend: &f, Created: added}, nil
	}

	req, created, err := s.requests.CreateRequest(ctx, actor, p.ID, store.RequestFriend,
		fmt.Sprintf("%s wants to be your friend.", actor.Name))
	if err != nil {
		return nil, err
	}
	return &BefriendResult{Request: req, Created: created}, nil
}
