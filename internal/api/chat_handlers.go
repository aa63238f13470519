package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wodo.ai/wodo-connect/internal/core"
	"wodo.ai/wodo-connect/internal/store"
)

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	ID          string        `json:"id"`
	Persona     store.Persona `json:"persona"`
	LastMessage *MessageView  `json:"lastMessage,omitempty"`
	UpdatedAt   int64         `json:"updatedAt"`
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.Chats.List(r.Context(), accountFrom(r.Context()).Username)
	if err != nil {
		writeError(w, "list conversations", err)
		return
	}
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		row := ConversationSummary{ID: c.ID, Persona: c.Persona, UpdatedAt: c.UpdatedAt}
		if n := len(c.Messages); n > 0 {
			last := newMessageView(c.Messages[n-1])
			row.LastMessage = &last
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

// StartConversationRequest names either a full persona or a saved friend.
type StartConversationRequest struct {
	Persona  *store.Persona `json:"persona,omitempty"`
	FriendID string         `json:"friendId,omitempty"`
}

func (h *APIHandler) StartConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req StartConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	me := accountFrom(r.Context())

	var persona store.Persona
	switch {
	case req.Persona != nil:
		persona = *req.Persona
	case req.FriendID != "":
		friends, err := h.svc.Friends.List(r.Context(), me.Username)
		if err != nil {
			writeError(w, "start conversation", err)
			return
		}
		found := false
		for _, f := range friends {
			if f.ID == req.FriendID {
				persona, found = core.PersonaFromFriend(f), true
				break
			}
		}
		if !found {
			http.Error(w, "Friend not found", http.StatusNotFound)
			return
		}
	default:
		http.Error(w, "persona or friendId is required", http.StatusBadRequest)
		return
	}

	conv, created, err := h.svc.Chats.StartConversation(r.Context(), me.Username, persona, "")
	if err != nil {
		writeError(w, "start conversation", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, newConversationView(conv))
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.Chats.Get(r.Context(), accountFrom(r.Context()).Username, chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, "get conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, newConversationView(conv))
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

type PostMessageResponse struct {
	Conversation ConversationView `json:"conversation"`
	Reply        MessageView      `json:"reply"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	conv, reply, err := h.svc.Chats.PostMessage(r.Context(), accountFrom(r.Context()).Username, chi.URLParam(r, "conversationID"), req.Text)
	if err != nil {
		writeError(w, "send message", err)
		return
	}
	writeJSON(w, http.StatusOK, PostMessageResponse{Conversation: newConversationView(conv), Reply: newMessageView(*reply)})
}

func (h *APIHandler) GetAssistantHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.Chats.Assistant(r.Context(), accountFrom(r.Context()).Username)
	if err != nil {
		writeError(w, "open assistant", err)
		return
	}
	writeJSON(w, http.StatusOK, newConversationView(conv))
}

func (h *APIHandler) PostAssistantMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	conv, reply, err := h.svc.Chats.PostAssistantMessage(r.Context(), accountFrom(r.Context()).Username, req.Text)
	if err != nil {
		writeError(w, "send message", err)
		return
	}
	writeJSON(w, http.StatusOK, PostMessageResponse{Conversation: newConversationView(conv), Reply: newMessageView(*reply)})
}
