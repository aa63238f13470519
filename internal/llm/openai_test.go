package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wodo.ai/wodo-connect/internal/config"
)

func fakeOpenAIServer(t *testing.T, reply string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			if captured != nil {
				_ = json.NewDecoder(r.Body).Decode(captured)
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "test-model",
				"choices": []map[string]interface{}{{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				}},
				"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"object": "list",
				"model":  "test-embed",
				"data": []map[string]interface{}{{
					"object":    "embedding",
					"index":     0,
					"embedding": []float32{0.25, 0.5, 0.25},
				}},
				"usage": map[string]int{"prompt_tokens": 1, "total_tokens": 1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOpenAI_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := fakeOpenAIServer(t, "  Hi there!  ", &body)
	defer srv.Close()

	m, err := NewOpenAI("", srv.URL, "test-model")
	require.NoError(t, err)

	out, err := m.Generate(context.Background(), Request{System: "be nice", Prompt: "hello", Temperature: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", out)

	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "test-model", body["model"])
}

func TestOpenAI_EmptyReply(t *testing.T) {
	srv := fakeOpenAIServer(t, "   ", nil)
	defer srv.Close()

	m, err := NewOpenAI("key", srv.URL, "test-model")
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{Prompt: "hello"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAI_Embed(t *testing.T) {
	srv := fakeOpenAIServer(t, "", nil)
	defer srv.Close()

	m, err := NewOpenAI("key", srv.URL, "test-model")
	require.NoError(t, err)

	vec, err := m.Embed(context.Background(), "pottery")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 0.25}, vec)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.Config{LLMProvider: "bard"})
	assert.Error(t, err)
}
