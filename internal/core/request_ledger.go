package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

const (
	MaxRequestMessageLength = 200

	cassieUsername = "cassie_creates"
	cassieName     = "Cassie"
	welcomeMessage = "Hey! I saw you just joined. I'm learning pottery right now, it's so relaxing. Welcome to Wodo AI! What's something new you're exploring?"

	acceptedFriendSummary = "You are now friends!"
)

// RequestLedger owns the lifecycle of chat and friend requests:
// pending, then exactly one of accepted or declined.
type RequestLedger struct {
	repo    *store.RequestRepository
	friends *FriendService
	chats   *ChatService
	events  events.Publisher
	now     func() time.Time
}

func requestIDPrefix(t store.RequestType) string {
	if t == store.RequestFriend {
		return "freq_"
	}
	return "req_"
}

// CreateRequest files a pending request from sender to receiverID. When an
// identical request is still pending it is returned with created=false and
// nothing is written.
func (l *RequestLedger) CreateRequest(ctx context.Context, sender store.UserAccount, receiverID string, typ store.RequestType, message string) (*store.ChatRequest, bool, error) {
	receiverID = strings.ToLower(strings.TrimSpace(receiverID))
	message = strings.TrimSpace(message)
	switch {
	case receiverID == "":
		return nil, false, invalid("receiverId", "receiver is required")
	case receiverID == sender.Username:
		return nil, false, invalid("receiverId", "you cannot send a request to yourself")
	case store.IsAIPersonaID(receiverID):
		return nil, false, invalid("receiverId", "AI personas cannot receive requests")
	case !typ.Valid():
		return nil, false, invalid("type", fmt.Sprintf("unknown request type %q", typ))
	case utf8.RuneCountInString(message) > MaxRequestMessageLength:
		return nil, false, invalid("message", fmt.Sprintf("message cannot exceed %d characters", MaxRequestMessageLength))
	}

	var result store.ChatRequest
	created := false
	_, err := l.repo.Update(ctx, func(all []store.ChatRequest) ([]store.ChatRequest, error) {
		for _, r := range all {
			if r.Status == store.StatusPending && r.SenderID == sender.Username &&
				r.ReceiverID == receiverID && r.EffectiveType() == typ {
				result = r
				return all, nil
			}
		}
		result = store.ChatRequest{
			ID:         newID(requestIDPrefix(typ)),
			SenderID:   sender.Username,
			SenderName: sender.Name,
			ReceiverID: receiverID,
			Status:     store.StatusPending,
			Timestamp:  millis(l.now()),
			Type:       typ,
			Message:    message,
		}
		created = true
		return append(all, result), nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	if created {
		logging.Infof("Request %s (%s) %s -> %s", result.ID, typ, sender.Username, receiverID)
		l.events.Publish(receiverID, events.Event{Type: events.RequestsChanged, SubjectID: result.ID})
		l.events.Publish(sender.Username, events.Event{Type: events.RequestsChanged, SubjectID: result.ID})
	}
	return &result, created, nil
}

// resolve moves a pending request addressed to actor into status. An
// accepted request may be accepted again by its receiver; replay reports
// that case and nothing is written.
func (l *RequestLedger) resolve(ctx context.Context, actor, requestID string, status store.RequestStatus) (req *store.ChatRequest, replay bool, err error) {
	var result store.ChatRequest
	_, err = l.repo.Update(ctx, func(all []store.ChatRequest) ([]store.ChatRequest, error) {
		for i := range all {
			if all[i].ID != requestID {
				continue
			}
			if all[i].ReceiverID != actor {
				return nil, ErrNotRecipient
			}
			if all[i].Status != store.StatusPending {
				if all[i].Status == store.StatusAccepted && status == store.StatusAccepted {
					result, replay = all[i], true
					return all, nil
				}
				return nil, ErrRequestClosed
			}
			all[i].Status = status
			result = all[i]
			return all, nil
		}
		return nil, &NotFoundError{Kind: "request", ID: requestID}
	})
	if err != nil {
		return nil, false, err
	}

	if !replay {
		l.events.Publish(result.ReceiverID, events.Event{Type: events.RequestsChanged, SubjectID: result.ID})
		l.events.Publish(result.SenderID, events.Event{Type: events.RequestsChanged, SubjectID: result.ID})
	}
	return &result, replay, nil
}

// Accept marks the request accepted and applies its side effect: a mutual
// friendship for friend requests, a conversation with the sender for chat
// requests. Both side effects are idempotent, so accepting an already
// accepted request again repairs one that failed half way.
func (l *RequestLedger) Accept(ctx context.Context, actor store.UserAccount, requestID string) (*store.ChatRequest, error) {
	req, replay, err := l.resolve(ctx, actor.Username, requestID, store.StatusAccepted)
	if err != nil {
		return nil, err
	}

	switch req.EffectiveType() {
	case store.RequestFriend:
		if err := l.friends.addMutual(ctx, actor, *req); err != nil {
			return req, fmt.Errorf("request accepted but friend list update failed: %w", err)
		}
	case store.RequestChat:
		persona, seed := chatPersonaFromRequest(*req)
		var msg *store.ChatMessage
		if seed != "" {
			// stamped with the request time so a replay finds it again
			msg = &store.ChatMessage{Sender: store.SenderAI, Text: seed, Timestamp: req.Timestamp}
		}
		if _, _, err := l.chats.startConversation(ctx, actor.Username, persona, msg); err != nil {
			return req, fmt.Errorf("request accepted but conversation could not be started: %w", err)
		}
	}
	if replay {
		logging.Infof("Request %s re-accepted by %s", req.ID, actor.Username)
	} else {
		logging.Infof("Request %s accepted by %s", req.ID, actor.Username)
	}
	return req, nil
}

// Decline never touches the friend lists.
func (l *RequestLedger) Decline(ctx context.Context, actor store.UserAccount, requestID string) (*store.ChatRequest, error) {
	req, _, err := l.resolve(ctx, actor.Username, requestID, store.StatusDeclined)
	if err != nil {
		return nil, err
	}
	logging.Infof("Request %s declined by %s", req.ID, actor.Username)
	return req, nil
}

func chatPersonaFromRequest(req store.ChatRequest) (store.Persona, string) {
	p := store.Persona{ID: req.SenderID, Name: req.SenderName}
	if req.Message != "" {
		p.StorySummary = req.Message
		p.StoryDetail = `They sent you a message: "` + req.Message + `"`
	} else {
		p.StorySummary = "Accepted your chat request."
		p.StoryDetail = "This user accepted your request to chat."
	}
	return p, req.Message
}

// ListPendingForReceiver returns pending requests addressed to username,
// newest first. An empty typ matches both types.
func (l *RequestLedger) ListPendingForReceiver(ctx context.Context, username string, typ store.RequestType) ([]store.ChatRequest, error) {
	all, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	out := make([]store.ChatRequest, 0)
	for _, r := range all {
		if r.ReceiverID != username || r.Status != store.StatusPending {
			continue
		}
		if typ != "" && r.EffectiveType() != typ {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

// ListSentByType returns the receivers username has sent typ requests to,
// whatever their current status.
func (l *RequestLedger) ListSentByType(ctx context.Context, username string, typ store.RequestType) (map[string]bool, error) {
	all, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	sent := make(map[string]bool)
	for _, r := range all {
		if r.SenderID == username && r.EffectiveType() == typ {
			sent[r.ReceiverID] = true
		}
	}
	return sent, nil
}

// SeedWelcomeRequest sends the built-in welcome chat request to acct
// unless one from the same sender already exists.
func (l *RequestLedger) SeedWelcomeRequest(ctx context.Context, acct store.UserAccount) (bool, error) {
	seeded := false
	_, err := l.repo.Update(ctx, func(all []store.ChatRequest) ([]store.ChatRequest, error) {
		for _, r := range all {
			if r.ReceiverID == acct.Username && r.SenderID == cassieUsername {
				return all, nil
			}
		}
		seeded = true
		return append(all, store.ChatRequest{
			ID:         newID("req_"),
			SenderID:   cassieUsername,
			SenderName: cassieName,
			ReceiverID: acct.Username,
			Status:     store.StatusPending,
			Timestamp:  millis(l.now()),
			Type:       store.RequestChat,
			Message:    welcomeMessage,
		}), nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed welcome request: %w", err)
	}
	if seeded {
		l.events.Publish(acct.Username, events.Event{Type: events.RequestsChanged})
	}
	return seeded, nil
}
