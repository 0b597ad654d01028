package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is assembled from environment variables, optionally seeded from a
// .env file by the caller. Every knob has a local-development default except
// the provider credentials.
type Config struct {
	Port          int
	ClientOrigins []string
	LogLevel      string

	AI      AIConfig
	Vector  VectorConfig
	Archive ArchiveConfig

	SessionTTLHours int
}

type AIConfig struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	Model         string
	EmbedModel    string
}

type VectorConfig struct {
	Store       string
	Namespace   string
	DatabaseURL string
	ChromemPath string
}

type ArchiveConfig struct {
	Type string
	Dir  string
	S3   S3Config
}

type S3Config struct {
	Endpoint  string
	SecretID  string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvInt("PORT", 3001),
		ClientOrigins: splitList(os.Getenv("CLIENT_ORIGIN")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AI: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "openai"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:         getEnv("AI_MODEL", "gpt-4o-mini"),
			EmbedModel:    getEnv("EMBED_MODEL", "text-embedding-3-small"),
		},
		Vector: VectorConfig{
			Store:       getEnv("VECTOR_STORE", "chromem"),
			Namespace:   getEnv("VECTOR_NAMESPACE", "langchain"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			ChromemPath: os.Getenv("CHROMEM_PATH"),
		},
		Archive: ArchiveConfig{
			Type: getEnv("ARCHIVE_TYPE", "none"),
			Dir:  os.Getenv("ARCHIVE_DIR"),
			S3: S3Config{
				Endpoint:  os.Getenv("ARCHIVE_S3_ENDPOINT"),
				SecretID:  os.Getenv("ARCHIVE_S3_SECRET_ID"),
				SecretKey: os.Getenv("ARCHIVE_S3_SECRET_KEY"),
				Bucket:    os.Getenv("ARCHIVE_S3_BUCKET"),
				Region:    getEnv("ARCHIVE_S3_REGION", "us-east-1"),
				UseSSL:    getEnvBool("ARCHIVE_S3_USE_SSL", true),
			},
		},
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
	}

	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "group":
		if cfg.AI.OpenAIAPIKey == "" && cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("group provider needs at least one of OPENAI_API_KEY, GEMINI_API_KEY")
		}
	default:
		return nil, fmt.Errorf("AI_PROVIDER must be openai, gemini or group")
	}

	switch cfg.Vector.Store {
	case "chromem":
	case "pgvector":
		if cfg.Vector.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the pgvector store")
		}
	default:
		return nil, fmt.Errorf("VECTOR_STORE must be chromem or pgvector")
	}

	switch cfg.Archive.Type {
	case "none":
	case "local":
		if cfg.Archive.Dir == "" {
			return nil, fmt.Errorf("ARCHIVE_DIR is required for the local archive")
		}
	case "s3":
		s3 := cfg.Archive.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.SecretID == "" || s3.SecretKey == "" {
			return nil, fmt.Errorf("ARCHIVE_S3 endpoint/bucket/secret_id/secret_key are required for the s3 archive")
		}
	default:
		return nil, fmt.Errorf("ARCHIVE_TYPE must be none, local or s3")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
