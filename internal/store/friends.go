package store

import "context"

// FriendRepository stores one friend list per owner under wodo-friends-<owner>.
type FriendRepository struct {
	c collection[Friend]
}

func NewFriendRepository(kv KV) *FriendRepository {
	return &FriendRepository{c: collection[Friend]{kv: kv}}
}

func (r *FriendRepository) List(ctx context.Context, owner string) ([]Friend, error) {
	return r.c.list(ctx, FriendsKey(owner))
}

func (r *FriendRepository) Update(ctx context.Context, owner string, fn func([]Friend) ([]Friend, error)) ([]Friend, error) {
	return r.c.update(ctx, FriendsKey(owner), fn)
}

// ConversationRepository stores one transcript list per owner.
type ConversationRepository struct {
	c collection[Conversation]
}

func NewConversationRepository(kv KV) *ConversationRepository {
	return &ConversationRepository{c: collection[Conversation]{kv: kv}}
}

func (r *ConversationRepository) List(ctx context.Context, owner string) ([]Conversation, error) {
	return r.c.list(ctx, ConversationsKey(owner))
}

func (r *ConversationRepository) Update(ctx context.Context, owner string, fn func([]Conversation) ([]Conversation, error)) ([]Conversation, error) {
	return r.c.update(ctx, ConversationsKey(owner), fn)
}
