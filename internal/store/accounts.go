package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"wodo.ai/wodo-connect/internal/logging"
)

// ErrAccountExists is returned by Create when the username is taken.
var ErrAccountExists = errors.New("account already exists")

type AccountRepository struct {
	c collection[UserAccount]
}

func NewAccountRepository(kv KV) *AccountRepository {
	return &AccountRepository{c: collection[UserAccount]{kv: kv}}
}

// Create appends acct. The username is stored as given; callers normalize it.
func (r *AccountRepository) Create(ctx context.Context, acct UserAccount) error {
	_, err := r.c.update(ctx, KeyAccounts, func(accounts []UserAccount) ([]UserAccount, error) {
		for _, a := range accounts {
			if a.Username == acct.Username {
				return nil, ErrAccountExists
			}
		}
		return append(accounts, acct), nil
	})
	return err
}

func (r *AccountRepository) List(ctx context.Context) ([]UserAccount, error) {
	return r.c.list(ctx, KeyAccounts)
}

// GetByUsername returns nil, nil when no account matches.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*UserAccount, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "accountRepo.GetByUsername")
	}
	for i := range accounts {
		if accounts[i].Username == username {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

type SessionRepository struct {
	kv KV
}

func NewSessionRepository(kv KV) *SessionRepository {
	return &SessionRepository{kv: kv}
}

func (r *SessionRepository) Save(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "sessionRepo.Save.Marshal")
	}
	return errors.Wrap(r.kv.Put(ctx, SessionKey(s.ID), raw), "sessionRepo.Save.Put")
}

// Get returns nil, nil for an unknown session. A record that no longer
// parses is removed and reported as absent.
func (r *SessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.kv.Get(ctx, SessionKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "sessionRepo.Get")
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		logging.Warnf("Failed to parse session %s, clearing it: %v", id, err)
		if delErr := r.kv.Delete(ctx, SessionKey(id)); delErr != nil {
			logging.Errorf("Failed to clear corrupt session %s: %v", id, delErr)
		}
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return errors.Wrap(r.kv.Delete(ctx, SessionKey(id)), "sessionRepo.Delete")
}
