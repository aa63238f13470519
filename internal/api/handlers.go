package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wodo.ai/wodo-connect/internal/auth"
	"wodo.ai/wodo-connect/internal/core"
	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

type APIHandler struct {
	svc *core.Services
	hub *events.Hub
}

func NewAPIHandler(svc *core.Services, hub *events.Hub) *APIHandler {
	return &APIHandler{svc: svc, hub: hub}
}

func sessionFrom(ctx context.Context) *store.Session {
	s, _ := ctx.Value(sessionCtxKey).(*store.Session)
	return s
}

func accountFrom(ctx context.Context) store.UserAccount {
	if s := sessionFrom(ctx); s != nil {
		return s.Account
	}
	return store.UserAccount{}
}

// usernameKey keys the AI rate limiter by account.
func usernameKey(r *http.Request) string {
	return accountFrom(r.Context()).Username
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// EventSource cannot set headers
	return r.URL.Query().Get("token")
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		session, err := h.svc.Profiles.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			logging.Errorf("Error in JWTAuthMiddleware: %v", err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if session == nil {
			http.Error(w, "Session has ended", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("Error encoding response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service errors onto status codes. Anything unexpected
// is logged and reported as a generic failure.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		ve *core.ValidationError
		nf *core.NotFoundError
		fe *core.FormatError
		se *core.ServiceError
	)
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, nf.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrUsernameTaken), errors.Is(err, core.ErrRequestClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, core.ErrNotRecipient):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.As(err, &fe):
		logging.Errorf("%s: %v", op, err)
		http.Error(w, "The AI returned an invalid response format. Please try again.", http.StatusBadGateway)
	case errors.As(err, &se):
		logging.Errorf("%s: %v", op, err)
		http.Error(w, "The AI service is unavailable. Please try again.", http.StatusBadGateway)
	default:
		logging.Errorf("%s: %v", op, err)
		http.Error(w, "Failed to "+op, http.StatusInternalServerError)
	}
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Profiles.CreateAccount(r.Context(), req.Name, req.Username)
	if err != nil {
		writeError(w, "create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type LoginRequest struct {
	Username string `json:"username"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Profiles.Login(r.Context(), req.Username)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			http.Error(w, "Unknown username", http.StatusUnauthorized)
			return
		}
		writeError(w, "log in", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := h.svc.Profiles.Logout(r.Context(), session.ID); err != nil {
		writeError(w, "log out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, accountFrom(r.Context()))
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Dashboard.Summary(r.Context(), accountFrom(r.Context()).Username)
	if err != nil {
		writeError(w, "load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
