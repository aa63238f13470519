package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"wodo.ai/wodo-connect/internal/auth"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

const minUsernameLength = 3

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type ProfileService struct {
	accounts *store.AccountRepository
	sessions *store.SessionRepository
	requests *RequestLedger
	now      func() time.Time
}

// LoginResult is an active session plus the bearer token naming it.
type LoginResult struct {
	Session store.Session `json:"session"`
	Token   string        `json:"token"`
}

// NormalizeUsername lower-cases username and checks it against the
// account rules.
func NormalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < minUsernameLength {
		return "", invalid("username", "Username must be at least 3 characters long.")
	}
	if !usernamePattern.MatchString(username) {
		return "", invalid("username", "Username can only contain lowercase letters, numbers, and underscores.")
	}
	return username, nil
}

// CreateAccount registers a new account, logs it in and queues the welcome
// request.
func (s *ProfileService) CreateAccount(ctx context.Context, name, username string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Name is required.")
	}
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	acct := store.UserAccount{Name: name, Username: username}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAccountExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	logging.Infof("Account created: %s", username)

	res, err := s.startSession(ctx, acct)
	if err != nil {
		return nil, err
	}

	if _, err := s.requests.SeedWelcomeRequest(ctx, acct); err != nil {
		// the account is usable without it
		logging.Warnf("Failed to seed welcome request for %s: %v", username, err)
	}
	return res, nil
}

func (s *ProfileService) Login(ctx context.Context, username string) (*LoginResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	acct, err := s.accounts.GetByUsername(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if acct == nil {
		return nil, &NotFoundError{Kind: "account", ID: normalized}
	}
	return s.startSession(ctx, *acct)
}

func (s *ProfileService) startSession(ctx context.Context, acct store.UserAccount) (*LoginResult, error) {
	session := store.Session{
		ID:        uuid.NewString(),
		Account:   acct,
		CreatedAt: millis(s.now()),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	token, err := auth.GenerateJWT(acct.Username, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &LoginResult{Session: session, Token: token}, nil
}

func (s *ProfileService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Resolve returns the active session or nil.
func (s *ProfileService) Resolve(ctx context.Context, sessionID string) (*store.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Authenticate checks the token signature and that its session is still
// active for the same account. It returns nil, nil for a logged-out token.
func (s *ProfileService) Authenticate(ctx context.Context, token string) (*store.Session, error) {
	claims, err := auth.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	session, err := s.Resolve(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Account.Username != claims.Username() {
		return nil, nil
	}
	return session, nil
}

func (s *ProfileService) Get(ctx context.Context, username string) (*store.UserAccount, error) {
	return s.accounts.GetByUsername(ctx, username)
}

func (s *ProfileService) List(ctx context.Context) ([]store.UserAccount, error) {
	return s.accounts.List(ctx)
}
