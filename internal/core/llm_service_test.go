package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wodo.ai/wodo-connect/internal/store"
	"wodo.ai/wodo-connect/internal/testutil"
)

const fourProfiles = `[
  {"id": "u_ax8h3", "name": "Maria", "storySummary": "Hiker.", "storyDetail": "I hike."},
  {"id": "u_b7", "name": "Liam", "storySummary": "Runner.", "storyDetail": "I run."},
  {"id": "k9", "name": "Ava", "storySummary": "Potter.", "storyDetail": "I throw clay."},
  {"id": "u_z1", "name": "Noah", "storySummary": "Cook.", "storyDetail": "I cook."}
]`

func TestParseMatches(t *testing.T) {
	personas, err := ParseMatches(fourProfiles)
	require.NoError(t, err)
	require.Len(t, personas, 4)
	assert.Equal(t, "u_k9", personas[2].ID, "ids are moved into the AI namespace")
	for _, p := range personas {
		assert.True(t, p.IsAI())
	}
}

func TestParseMatches_StripsFence(t *testing.T) {
	personas, err := ParseMatches("```json\n" + fourProfiles + "\n```")
	require.NoError(t, err)
	assert.Len(t, personas, 4)
}

func TestParseMatches_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":      "Sure! Here are some profiles.",
		"object":        `{"id": "u_1"}`,
		"three entries": `[{"id":"u_1","name":"A","storySummary":"s","storyDetail":"d"},{"id":"u_2","name":"B","storySummary":"s","storyDetail":"d"},{"id":"u_3","name":"C","storySummary":"s","storyDetail":"d"}]`,
		"missing field": `[{"id":"u_1","name":"A","storySummary":"s","storyDetail":"d"},{"id":"u_2","name":"B","storySummary":"s","storyDetail":"d"},{"id":"u_3","name":"C","storySummary":"s","storyDetail":"d"},{"id":"u_4","name":"","storySummary":"s","storyDetail":"d"}]`,
		"unknown field": `[{"id":"u_1","name":"A","storySummary":"s","storyDetail":"d","age":3},{"id":"u_2","name":"B","storySummary":"s","storyDetail":"d"},{"id":"u_3","name":"C","storySummary":"s","storyDetail":"d"},{"id":"u_4","name":"D","storySummary":"s","storyDetail":"d"}]`,
		"duplicate ids": `[{"id":"u_1","name":"A","storySummary":"s","storyDetail":"d"},{"id":"u_1","name":"B","storySummary":"s","storyDetail":"d"},{"id":"u_3","name":"C","storySummary":"s","storyDetail":"d"},{"id":"u_4","name":"D","storySummary":"s","storyDetail":"d"}]`,
		"trailing data": fourProfiles + ` []`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMatches(raw)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestGenerateMatches(t *testing.T) {
	model := &testutil.TextModel{Reply: fourProfiles}
	svc := NewLLMService(model)

	personas, err := svc.GenerateMatches(context.Background(), "I learned pottery this year")
	require.NoError(t, err)
	assert.Len(t, personas, 4)

	require.Len(t, model.Requests, 1)
	req := model.Requests[0]
	assert.True(t, req.JSON)
	assert.InDelta(t, 0.5, req.Temperature, 1e-6)
	assert.Contains(t, req.Prompt, `"I learned pottery this year"`)
	assert.Contains(t, req.Prompt, "2 profiles with common male-presenting names")
}

func TestGenerateMatches_ShortStory(t *testing.T) {
	model := &testutil.TextModel{Reply: fourProfiles}
	_, err := NewLLMService(model).GenerateMatches(context.Background(), "  too short ")
	// "too short" is 9 characters once trimmed
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, model.Requests)
}

func TestGenerateMatches_ModelFailure(t *testing.T) {
	model := &testutil.TextModel{Err: errors.New("quota exceeded")}
	_, err := NewLLMService(model).GenerateMatches(context.Background(), "a long enough story")
	var se *ServiceError
	assert.ErrorAs(t, err, &se)
}

func TestGenerateReply_Prompt(t *testing.T) {
	model := &testutil.TextModel{Reply: "  That sounds lovely!  "}
	svc := NewLLMService(model)
	history := []store.ChatMessage{
		{Sender: store.SenderAI, Text: "Hi, I'm Maria."},
		{Sender: store.SenderUser, Text: "I love hiking too."},
	}

	reply, err := svc.GenerateReply(context.Background(), maria, history)
	require.NoError(t, err)
	assert.Equal(t, "That sounds lovely!", reply)

	prompt := model.LastPrompt()
	assert.Contains(t, prompt, "a person named Maria")
	assert.Contains(t, prompt, `"I hike mountains."`)
	assert.Contains(t, prompt, "Maria: Hi, I'm Maria.\nThem: I love hiking too.")
	assert.InDelta(t, 0.95, model.Requests[0].TopP, 1e-6)
}

func TestGenerateAssistantReply_StoryOpener(t *testing.T) {
	model := &testutil.TextModel{Reply: "What got you into pottery?"}
	svc := NewLLMService(model)
	svc.pick = func(int) int { return 1 }

	_, err := svc.GenerateAssistantReply(context.Background(), []store.ChatMessage{
		{Sender: store.SenderUser, Text: "I started pottery"},
	})
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "role-playing as Sophia")

	_, err = svc.GenerateAssistantReply(context.Background(), []store.ChatMessage{
		{Sender: store.SenderUser, Text: "I started pottery"},
		{Sender: store.SenderAI, Text: "Nice!"},
		{Sender: store.SenderUser, Text: "Any tips?"},
	})
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "You are Wodo")
	assert.Contains(t, model.LastPrompt(), "Wodo AI: Nice!\nUser: Any tips?")
	assert.InDelta(t, 0.8, model.Requests[1].Temperature, 1e-6)
}
