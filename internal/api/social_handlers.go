package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"wodo.ai/wodo-connect/internal/store"
)

type PostThoughtRequest struct {
	Text string `json:"text"`
}

func (h *APIHandler) ListThoughtsHandler(w http.ResponseWriter, r *http.Request) {
	exclude := ""
	if r.URL.Query().Get("others") == "true" {
		exclude = accountFrom(r.Context()).Username
	}
	thoughts, err := h.svc.Thoughts.ListVisible(r.Context(), exclude)
	if err != nil {
		writeError(w, "list thoughts", err)
		return
	}
	writeJSON(w, http.StatusOK, thoughts)
}

func (h *APIHandler) PostThoughtHandler(w http.ResponseWriter, r *http.Request) {
	var req PostThoughtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	thought, err := h.svc.Thoughts.Post(r.Context(), accountFrom(r.Context()), req.Text)
	if err != nil {
		writeError(w, "post thought", err)
		return
	}
	writeJSON(w, http.StatusCreated, thought)
}

func requestTypeParam(r *http.Request) (store.RequestType, bool) {
	t := store.RequestType(strings.ToLower(r.URL.Query().Get("type")))
	if t == "" || t.Valid() {
		return t, true
	}
	return "", false
}

func (h *APIHandler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	typ, ok := requestTypeParam(r)
	if !ok {
		http.Error(w, "type must be chat or friend", http.StatusBadRequest)
		return
	}
	pending, err := h.svc.Requests.ListPendingForReceiver(r.Context(), accountFrom(r.Context()).Username, typ)
	if err != nil {
		writeError(w, "list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *APIHandler) ListSentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	typ, ok := requestTypeParam(r)
	if !ok || typ == "" {
		http.Error(w, "type must be chat or friend", http.StatusBadRequest)
		return
	}
	sent, err := h.svc.Requests.ListSentByType(r.Context(), accountFrom(r.Context()).Username, typ)
	if err != nil {
		writeError(w, "list sent requests", err)
		return
	}
	ids := make([]string, 0, len(sent))
	for id := range sent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, map[string][]string{"receiverIds": ids})
}

type CreateRequestRequest struct {
	ReceiverID string            `json:"receiverId"`
	Type       store.RequestType `json:"type"`
	Message    string            `json:"message,omitempty"`
}

type CreateRequestResponse struct {
	Request *store.ChatRequest `json:"request"`
	Created bool               `json:"created"`
}

func (h *APIHandler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = store.RequestChat
	}

	created, isNew, err := h.svc.Requests.CreateRequest(r.Context(), accountFrom(r.Context()), req.ReceiverID, req.Type, req.Message)
	if err != nil {
		writeError(w, "create request", err)
		return
	}
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, CreateRequestResponse{Request: created, Created: isNew})
}

func (h *APIHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Requests.Accept(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, "accept request", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *APIHandler) DeclineRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Requests.Decline(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, "decline request", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *APIHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	friends, err := h.svc.Friends.List(r.Context(), accountFrom(r.Context()).Username)
	if err != nil {
		writeError(w, "list friends", err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// AddFriendHandler takes the persona being befriended.
func (h *APIHandler) AddFriendHandler(w http.ResponseWriter, r *http.Request) {
	var p store.Persona
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := h.svc.Friends.Befriend(r.Context(), accountFrom(r.Context()), p)
	if err != nil {
		writeError(w, "add friend", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *APIHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Friends.Remove(r.Context(), accountFrom(r.Context()).Username, chi.URLParam(r, "friendID")); err != nil {
		writeError(w, "remove friend", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MatchesRequest struct {
	Story string `json:"story"`
}

func (h *APIHandler) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	var req MatchesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	personas, err := h.svc.Personas.GenerateMatches(r.Context(), req.Story)
	if err != nil {
		writeError(w, "find matches", err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

func (h *APIHandler) PeopleHandler(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.People.ListPeople(r.Context(), accountFrom(r.Context()).Username, r.URL.Query().Get("story"))
	if err != nil {
		writeError(w, "list people", err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}
