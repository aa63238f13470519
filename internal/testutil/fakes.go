// Package testutil holds deterministic stand-ins for the text model and the
// clock, shared by the core, api and cli tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wodo.ai/wodo-connect/internal/llm"
	"wodo.ai/wodo-connect/internal/store"
)

var ErrFakeModel = errors.New("fake model failure")

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Personas is a scripted persona generator. Set Fail to make every call
// return ErrFakeModel.
type Personas struct {
	mu      sync.Mutex
	Fail    bool
	Matches []store.Persona
	Calls   int
	// Vectors maps text to the embedding Embed returns for it.
	Vectors map[string][]float32
}

func NewPersonas() *Personas {
	return &Personas{
		Matches: []store.Persona{
			{ID: "u_a1", Name: "Liam", StorySummary: "Runner.", StoryDetail: "I run marathons."},
			{ID: "u_b2", Name: "Noah", StorySummary: "Cyclist.", StoryDetail: "I cycle across countries."},
			{ID: "u_c3", Name: "Emma", StorySummary: "Potter.", StoryDetail: "I make bowls."},
			{ID: "u_d4", Name: "Mia", StorySummary: "Painter.", StoryDetail: "I paint landscapes."},
		},
		Vectors: map[string][]float32{},
	}
}

func (p *Personas) record() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Fail {
		return ErrFakeModel
	}
	return nil
}

func (p *Personas) GenerateMatches(_ context.Context, _ string) ([]store.Persona, error) {
	if err := p.record(); err != nil {
		return nil, err
	}
	out := make([]store.Persona, len(p.Matches))
	copy(out, p.Matches)
	return out, nil
}

func (p *Personas) GenerateReply(_ context.Context, persona store.Persona, history []store.ChatMessage) (string, error) {
	if err := p.record(); err != nil {
		return "", err
	}
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Text
	}
	return fmt.Sprintf("%s heard: %s", persona.Name, last), nil
}

func (p *Personas) GenerateAssistantReply(_ context.Context, history []store.ChatMessage) (string, error) {
	if err := p.record(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Wodo reply #%d", len(history)), nil
}

func (p *Personas) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return nil, ErrFakeModel
	}
	v, ok := p.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

// TextModel records requests and answers with Reply, or Err when set.
type TextModel struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Requests []llm.Request
}

func (m *TextModel) Generate(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

func (m *TextModel) Embed(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []float32{float32(len(text)), float32(strings.Count(text, " "))}, nil
}

func (m *TextModel) Close() error { return nil }

// LastPrompt returns the prompt of the most recent request.
func (m *TextModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ""
	}
	return m.Requests[len(m.Requests)-1].Prompt
}
