package api

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"wodo.ai/wodo-connect/internal/store"
)

// Raw HTML in message text is dropped, goldmark only emits it with
// html.WithUnsafe.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return buf.String()
}

type MessageView struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
	Timestamp int64  `json:"timestamp"`
}

type ConversationView struct {
	ID        string        `json:"id"`
	Persona   store.Persona `json:"persona"`
	Messages  []MessageView `json:"messages"`
	CreatedAt int64         `json:"createdAt"`
	UpdatedAt int64         `json:"updatedAt"`
}

func newMessageView(m store.ChatMessage) MessageView {
	return MessageView{Sender: m.Sender, Text: m.Text, HTML: renderMarkdown(m.Text), Timestamp: m.Timestamp}
}

func newConversationView(c *store.Conversation) ConversationView {
	msgs := make([]MessageView, 0, len(c.Messages))
	for _, m := range c.Messages {
		msgs = append(msgs, newMessageView(m))
	}
	return ConversationView{
		ID:        c.ID,
		Persona:   c.Persona,
		Messages:  msgs,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
