package api

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"wodo.ai/wodo-connect/internal/store"
)

func buildThoughtFeed(baseURL string, thoughts []store.TodaysThought, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "Wodo: Today's Thoughts",
		Link:        &feeds.Link{Href: baseURL + "/api/thoughts"},
		Description: "What people on Wodo are thinking about today.",
		Created:     now,
	}
	for _, t := range thoughts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          t.ID,
			Title:       t.UserName,
			Link:        &feeds.Link{Href: baseURL + "/api/thoughts#" + t.ID},
			Description: t.Text,
			Author:      &feeds.Author{Name: t.UserName},
			Created:     t.PostedAt(),
		})
	}
	return feed
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// ThoughtsFeedHandler publishes the visible thoughts as RSS.
func (h *APIHandler) ThoughtsFeedHandler(w http.ResponseWriter, r *http.Request) {
	thoughts, err := h.svc.Thoughts.ListVisible(r.Context(), "")
	if err != nil {
		writeError(w, "list thoughts", err)
		return
	}
	rss, err := buildThoughtFeed(requestBaseURL(r), thoughts, time.Now()).ToRss()
	if err != nil {
		writeError(w, "render feed", err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}
