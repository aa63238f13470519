package core

import (
	"context"

	"wodo.ai/wodo-connect/internal/store"
)

// Summary feeds the dashboard badges.
type Summary struct {
	PendingRequests       int                  `json:"pendingRequests"`
	PendingChatRequests   int                  `json:"pendingChatRequests"`
	PendingFriendRequests int                  `json:"pendingFriendRequests"`
	FriendCount           int                  `json:"friendCount"`
	LatestThought         *store.TodaysThought `json:"latestThought,omitempty"`
}

type DashboardService struct {
	requests *RequestLedger
	friends  *FriendService
	thoughts *ThoughtFeed
}

func (s *DashboardService) Summary(ctx context.Context, username string) (*Summary, error) {
	pending, err := s.requests.ListPendingForReceiver(ctx, username, "")
	if err != nil {
		return nil, err
	}
	friends, err := s.friends.List(ctx, username)
	if err != nil {
		return nil, err
	}
	latest, err := s.thoughts.LatestFor(ctx, username)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		PendingRequests: len(pending),
		FriendCount:     len(friends),
		LatestThought:   latest,
	}
	for _, r := range pending {
		if r.EffectiveType() == store.RequestFriend {
			sum.PendingFriendRequests++
		} else {
			sum.PendingChatRequests++
		}
	}
	return sum, nil
}
