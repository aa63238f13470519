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

const MaxThoughtLength = 280

// ThoughtFeed keeps one live thought per user. Expiry is evaluated on every
// read; stale rows are pruned lazily on the next post.
type ThoughtFeed struct {
	repo   *store.ThoughtRepository
	events events.Publisher
	now    func() time.Time
	ttl    time.Duration
}

func (f *ThoughtFeed) visible(t store.TodaysThought, now time.Time) bool {
	return now.Sub(t.PostedAt()) < f.ttl
}

// Post replaces the author's current thought.
func (f *ThoughtFeed) Post(ctx context.Context, author store.UserAccount, text string) (*store.TodaysThought, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "thought cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxThoughtLength {
		return nil, invalid("text", fmt.Sprintf("thought cannot exceed %d characters", MaxThoughtLength))
	}

	now := f.now()
	thought := store.TodaysThought{
		ID:        newID("thought_"),
		UserID:    author.Username,
		UserName:  author.Name,
		Text:      text,
		Timestamp: millis(now),
	}

	_, err := f.repo.Update(ctx, func(all []store.TodaysThought) ([]store.TodaysThought, error) {
		kept := all[:0]
		for _, t := range all {
			if t.UserID == author.Username || !f.visible(t, now) {
				continue
			}
			kept = append(kept, t)
		}
		return append(kept, thought), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save thought: %w", err)
	}

	logging.Debugf("Thought %s posted by %s", thought.ID, author.Username)
	f.events.Broadcast(events.Event{Type: events.ThoughtsChanged, SubjectID: author.Username})
	return &thought, nil
}

// ListVisible returns unexpired thoughts newest first, leaving out
// excludeUserID when it is set.
func (f *ThoughtFeed) ListVisible(ctx context.Context, excludeUserID string) ([]store.TodaysThought, error) {
	all, err := f.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load thoughts: %w", err)
	}

	now := f.now()
	out := make([]store.TodaysThought, 0, len(all))
	for _, t := range all {
		if excludeUserID != "" && t.UserID == excludeUserID {
			continue
		}
		if f.visible(t, now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

// LatestFor returns userID's visible thought, or nil.
func (f *ThoughtFeed) LatestFor(ctx context.Context, userID string) (*store.TodaysThought, error) {
	all, err := f.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load thoughts: %w", err)
	}
	now := f.now()
	var latest *store.TodaysThought
	for i := range all {
		t := all[i]
		if t.UserID != userID || !f.visible(t, now) {
			continue
		}
		if latest == nil || t.Timestamp > latest.Timestamp {
			latest = &t
		}
	}
	return latest, nil
}

// SeedInitialThoughts writes the two sample thoughts the first time the
// feed is opened. It reports whether anything was written.
func (f *ThoughtFeed) SeedInitialThoughts(ctx context.Context) (bool, error) {
	ok, err := f.repo.Initialized(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	now := f.now()
	seed := []store.TodaysThought{
		{
			ID:        "thought_1",
			UserID:    "alex_runs",
			UserName:  "Alex",
			Text:      "Just finished a marathon I never thought I could. Feeling on top of the world and wondering what the next big challenge should be!",
			Timestamp: millis(now),
		},
		{
			ID:        "thought_2",
			UserID:    cassieUsername,
			UserName:  cassieName,
			Text:      "I started learning pottery, and the feeling of creating something from a lump of clay is incredibly grounding. It's messy but so meditative.",
			Timestamp: millis(now.Add(-3 * time.Hour)),
		},
	}
	if _, err := f.repo.Update(ctx, func([]store.TodaysThought) ([]store.TodaysThought, error) {
		return seed, nil
	}); err != nil {
		return false, fmt.Errorf("failed to seed thoughts: %w", err)
	}
	logging.Infof("Seeded %d sample thoughts", len(seed))
	return true, nil
}
