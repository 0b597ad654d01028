package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3001, cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "chromem", cfg.Vector.Store)
	require.Equal(t, "langchain", cfg.Vector.Namespace)
	require.Equal(t, "none", cfg.Archive.Type)
	require.Equal(t, 24, cfg.SessionTTLHours)
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadGeminiProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-test")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.AI.Provider)
}

func TestLoadGroupNeedsAtLeastOneKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "group")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadPGVectorRequiresDatabaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("VECTOR_STORE", "pgvector")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/quiz")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "pgvector", cfg.Vector.Store)
}

func TestLoadLocalArchiveRequiresDir(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ARCHIVE_TYPE", "local")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("ARCHIVE_DIR", "/var/lib/quiz")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/quiz", cfg.Archive.Dir)
}

func TestLoadClientOriginList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLIENT_ORIGIN", "http://localhost:3000, https://quiz.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"http://localhost:3000", "https://quiz.example.com"}, cfg.ClientOrigins)
}

func TestLoadBadPortFallsBack(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3001, cfg.Port)
}
