package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	"wodo.ai/wodo-connect/internal/llm"
	"wodo.ai/wodo-connect/internal/logging"
	"wodo.ai/wodo-connect/internal/store"
)

const (
	MinStoryLength = 10
	matchCount     = 4

	matchTemperature     = 0.5
	replyTemperature     = 0.9
	assistantTemperature = 0.8
	defaultTopP          = 0.95

	matchPromptTemplate = `You are a data generator. Your task is to create 4 fictional user profiles based on a user's story.
The output MUST be ONLY a single, valid JSON array containing 4 user profile objects.
The output MUST contain 2 profiles with common male-presenting names and 2 profiles with common female-presenting names.
Do not add any commentary, explanations, or markdown. The JSON must be perfectly formed to be parsed directly.

Here is the story from the main user's profile:
"%s"

Each object in the JSON array must have these EXACT keys with string values: "id", "name", "storySummary", "storyDetail".
- "id": A short, unique random string ID (e.g., "u_ax8h3").
- "name": A single first name.
- "storySummary": A one-sentence summary of a thematically similar story.
- "storyDetail": A 2-3 sentence detailed version of their story.`

	replyPromptTemplate = `You are playing the role of a person named %[1]s on a social connection app.
Your backstory is: "%[2]s".
You are in a friendly, professional, and engaging chat with someone who has a similar story to yours.
Here is the conversation so far:
---
%[3]s
---
The last message was from the other person. Write a short, natural, and engaging reply from your perspective as %[1]s.
- Keep your reply to 1-3 sentences.
- Be warm and inquisitive.
- Do not act like a bot or an AI. Act like a real person.
- Do not output your name or any prefix like "%[1]s:". Just provide the text of your message.`

	storyOpenerPromptTemplate = `You are role-playing as %s. You've just read this story from a user: "%s".
Respond as a warm, interested person (not an AI) and start a conversation based on their story.
Ask an insightful, open-ended question. Keep it short (1-3 sentences).
Do not introduce yourself as an AI. Just give the reply.`

	assistantPromptTemplate = `You are Wodo, a friendly and helpful AI assistant.
Your goal is to be creative, engaging, and provide useful information to the user.
Here is the conversation so far:
---
%s
---
The last message was from the User. Write a natural and helpful reply.
Keep it concise and friendly. Do not use any prefix.`
)

var (
	storyOpenerNames = []string{"Liam", "Sophia", "Ethan", "Ava"}
	fenceRegex       = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")
)

// LLMService turns stories and chat history into prompts for a TextModel
// and validates what comes back.
type LLMService struct {
	model llm.TextModel
	pick  func(n int) int
}

func NewLLMService(model llm.TextModel) *LLMService {
	return &LLMService{model: model, pick: rand.IntN}
}

func (s *LLMService) Close() error {
	return s.model.Close()
}

func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.model.Embed(ctx, text)
}

// GenerateMatches asks for exactly four AI personas whose stories echo
// story.
func (s *LLMService) GenerateMatches(ctx context.Context, story string) ([]store.Persona, error) {
	story = strings.TrimSpace(story)
	if utf8.RuneCountInString(story) < MinStoryLength {
		return nil, invalid("story", "Please enter a story of at least 10 characters.")
	}

	raw, err := s.model.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(matchPromptTemplate, story),
		Temperature: matchTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, &ServiceError{Op: "generate matches", Err: err}
	}

	personas, err := ParseMatches(raw)
	if err != nil {
		logging.Warnf("Rejected match payload: %v", err)
		return nil, err
	}
	return personas, nil
}

// ParseMatches strips an optional code fence and decodes exactly four
// complete personas. Ids are forced into the AI namespace.
func ParseMatches(raw string) ([]store.Persona, error) {
	cleaned := strings.TrimSpace(raw)
	if m := fenceRegex.FindStringSubmatch(cleaned); m != nil && m[2] != "" {
		cleaned = strings.TrimSpace(m[2])
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()
	var personas []store.Persona
	if err := dec.Decode(&personas); err != nil {
		return nil, &FormatError{Reason: "payload is not a JSON array of profiles", Err: err}
	}
	if dec.More() {
		return nil, &FormatError{Reason: "trailing data after the profile array"}
	}
	if len(personas) != matchCount {
		return nil, &FormatError{Reason: fmt.Sprintf("expected %d profiles, got %d", matchCount, len(personas))}
	}

	seen := make(map[string]bool, len(personas))
	for i := range personas {
		p := &personas[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" || p.Name == "" || strings.TrimSpace(p.StorySummary) == "" || strings.TrimSpace(p.StoryDetail) == "" {
			return nil, &FormatError{Reason: fmt.Sprintf("profile %d is missing a field", i)}
		}
		if !p.IsAI() {
			p.ID = store.AIPersonaPrefix + p.ID
		}
		if seen[p.ID] {
			return nil, &FormatError{Reason: fmt.Sprintf("duplicate profile id %q", p.ID)}
		}
		seen[p.ID] = true
	}
	return personas, nil
}

func renderHistory(history []store.ChatMessage, userLabel, aiLabel string) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		label := aiLabel
		if m.Sender == store.SenderUser {
			label = userLabel
		}
		lines = append(lines, label+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// GenerateReply answers as persona, in character.
func (s *LLMService) GenerateReply(ctx context.Context, persona store.Persona, history []store.ChatMessage) (string, error) {
	prompt := fmt.Sprintf(replyPromptTemplate, persona.Name, persona.StoryDetail, renderHistory(history, "Them", persona.Name))
	reply, err := s.model.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: replyTemperature,
		TopP:        defaultTopP,
	})
	if err != nil {
		return "", &ServiceError{Op: "generate reply", Err: err}
	}
	return strings.TrimSpace(reply), nil
}

// GenerateAssistantReply answers as Wodo. A conversation that so far holds
// only the user's first message is treated as a story and answered by a
// randomly picked persona instead.
func (s *LLMService) GenerateAssistantReply(ctx context.Context, history []store.ChatMessage) (string, error) {
	var req llm.Request
	if len(history) == 1 && history[0].Sender == store.SenderUser {
		name := storyOpenerNames[s.pick(len(storyOpenerNames))]
		req = llm.Request{
			Prompt:      fmt.Sprintf(storyOpenerPromptTemplate, name, history[0].Text),
			Temperature: replyTemperature,
			TopP:        defaultTopP,
		}
	} else {
		req = llm.Request{
			Prompt:      fmt.Sprintf(assistantPromptTemplate, renderHistory(history, "User", "Wodo AI")),
			Temperature: assistantTemperature,
			TopP:        defaultTopP,
		}
	}

	reply, err := s.model.Generate(ctx, req)
	if err != nil {
		return "", &ServiceError{Op: "generate assistant reply", Err: err}
	}
	return strings.TrimSpace(reply), nil
}
