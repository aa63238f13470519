package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v, err := newViper(t.TempDir())
	require.NoError(t, err)
	c := fromViper(v)

	assert.Equal(t, ProviderGemini, c.LLMProvider)
	assert.Equal(t, "sqlite3", c.StorageDriver)
	assert.Equal(t, "wodo.db", c.DatabaseURL)
	assert.Equal(t, "8080", c.HTTPPort)
	assert.Equal(t, 24*time.Hour, c.ThoughtTTL)
	assert.Equal(t, 20, c.AIRatePerMinute)
	assert.Equal(t, 5, c.AIRateBurst)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "http_port: \"9000\"\nstorage_driver: postgres\nthought_ttl: 2h\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wodo.yaml"), []byte(yaml), 0o600))
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LLM_PROVIDER", "OpenAI")

	v, err := newViper(dir)
	require.NoError(t, err)
	c := fromViper(v)

	assert.Equal(t, "9100", c.HTTPPort)
	assert.Equal(t, "postgres", c.StorageDriver)
	assert.Equal(t, 2*time.Hour, c.ThoughtTTL)
	assert.Equal(t, ProviderOpenAI, c.LLMProvider)
}

func TestValidateServer(t *testing.T) {
	valid := Config{
		LLMProvider:     ProviderGemini,
		GeminiAPIKey:    "key",
		JWTSecret:       "secret",
		ThoughtTTL:      24 * time.Hour,
		AIRatePerMinute: 10,
		AIRateBurst:     2,
	}
	require.NoError(t, valid.ValidateServer())

	noSecret := valid
	noSecret.JWTSecret = ""
	assert.ErrorContains(t, noSecret.ValidateServer(), "JWT_SECRET")

	noKey := valid
	noKey.GeminiAPIKey = ""
	assert.ErrorContains(t, noKey.ValidateServer(), "GEMINI_API_KEY")

	openai := valid
	openai.LLMProvider = ProviderOpenAI
	assert.Error(t, openai.ValidateServer())
	openai.OpenAIBaseURL = "http://localhost:11434/v1"
	assert.NoError(t, openai.ValidateServer())

	unknown := valid
	unknown.LLMProvider = "bard"
	assert.Error(t, unknown.ValidateServer())
}
