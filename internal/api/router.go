package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	limits "wodo.ai/wodo-connect/internal/middleware"
)

// NewRouter mounts the API. limiter throttles the routes that call the
// text model; nil disables throttling.
func NewRouter(apiHandler *APIHandler, limiter *limits.LimiterStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	aiLimited := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		aiLimited = limits.RateLimit(limiter, usernameKey)
	}
	// the people list only embeds when it is ranked against a story
	storyLimited := func(next http.Handler) http.Handler {
		limited := aiLimited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("story") != "" {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/accounts", apiHandler.CreateAccountHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/thoughts/feed.rss", apiHandler.ThoughtsFeedHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/logout", apiHandler.LogoutHandler)
			r.Get("/me", apiHandler.MeHandler)
			r.Get("/dashboard", apiHandler.DashboardHandler)
			r.Get("/events", apiHandler.EventsHandler)

			r.Get("/thoughts", apiHandler.ListThoughtsHandler)
			r.Post("/thoughts", apiHandler.PostThoughtHandler)

			r.Get("/requests", apiHandler.ListRequestsHandler)
			r.Post("/requests", apiHandler.CreateRequestHandler)
			r.Get("/requests/sent", apiHandler.ListSentRequestsHandler)
			r.Post("/requests/{requestID}/accept", apiHandler.AcceptRequestHandler)
			r.Post("/requests/{requestID}/decline", apiHandler.DeclineRequestHandler)

			r.Get("/friends", apiHandler.ListFriendsHandler)
			r.Post("/friends", apiHandler.AddFriendHandler)
			r.Delete("/friends/{friendID}", apiHandler.RemoveFriendHandler)

			r.With(storyLimited).Get("/people", apiHandler.PeopleHandler)
			r.With(aiLimited).Post("/matches", apiHandler.MatchesHandler)

			r.Get("/conversations", apiHandler.ListConversationsHandler)
			r.Post("/conversations", apiHandler.StartConversationHandler)
			r.Get("/conversations/{conversationID}", apiHandler.GetConversationHandler)
			r.With(aiLimited).Post("/conversations/{conversationID}/messages", apiHandler.PostMessageHandler)

			r.Get("/assistant", apiHandler.GetAssistantHandler)
			r.With(aiLimited).Post("/assistant", apiHandler.PostAssistantMessageHandler)
		})
	})

	return r
}
