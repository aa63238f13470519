package store

// Store bundles the repositories that share one KV backend.
type Store struct {
	kv KV

	Accounts      *AccountRepository
	Sessions      *SessionRepository
	Thoughts      *ThoughtRepository
	Requests      *RequestRepository
	Friends       *FriendRepository
	Conversations *ConversationRepository
}

func New(kv KV) *Store {
	return &Store{
		kv:            kv,
		Accounts:      NewAccountRepository(kv),
		Sessions:      NewSessionRepository(kv),
		Thoughts:      NewThoughtRepository(kv),
		Requests:      NewRequestRepository(kv),
		Friends:       NewFriendRepository(kv),
		Conversations: NewConversationRepository(kv),
	}
}

func (s *Store) Close() error {
	return s.kv.Close()
}
