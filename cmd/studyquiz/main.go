package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/chunker"
	"github.com/quizlearn/studyquiz/internal/config"
	"github.com/quizlearn/studyquiz/internal/db"
	"github.com/quizlearn/studyquiz/internal/embedcache"
	"github.com/quizlearn/studyquiz/internal/filestore"
	"github.com/quizlearn/studyquiz/internal/handler"
	"github.com/quizlearn/studyquiz/internal/ingest"
	"github.com/quizlearn/studyquiz/internal/job"
	"github.com/quizlearn/studyquiz/internal/quiz"
	"github.com/quizlearn/studyquiz/internal/schedule"
	"github.com/quizlearn/studyquiz/internal/vectorindex"
)

const (
	chunkMaxLen  = 1000
	chunkOverlap = 0

	embedCacheSize = 2048
	embedCacheTTL  = time.Hour

	generateWindow  = 2 * time.Second
	janitorCronSpec = "0 * * * *"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studyquiz",
		Short: "rag-backed study quiz server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "delete every indexed chunk from the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return runCleanup(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, cleanupCmd)
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup() (*config.Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init("", cfg.LogLevel, 0, 0, 0, true)
	return cfg, nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("vector_store", cfg.Vector.Store),
		zap.String("archive", cfg.Archive.Type),
	)

	gen, emb, err := buildAI(cfg)
	if err != nil {
		return fmt.Errorf("init ai: %w", err)
	}
	emb = embedcache.WrapLruCacheToEmbedder(emb, embedCacheSize, embedCacheTTL)

	index, database, err := buildIndex(cfg, emb)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}
	if database != nil {
		defer database.Close()
	}

	archive, err := buildArchive(cfg)
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}

	splitter := chunker.New(chunkMaxLen, chunkOverlap)
	ingestSvc := ingest.NewService(splitter, index, archive)
	quizSvc := quiz.NewService(gen, index)

	router := handler.NewRouter(handler.RouterDeps{
		Ingest:         handler.NewIngestHandler(ingestSvc, index),
		Quiz:           handler.NewQuizHandler(quizSvc),
		CORSAllowlist:  cfg.ClientOrigins,
		GenerateWindow: generateWindow,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	janitorTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	if err := scheduler.AddJob(job.NewSessionJanitorJob(quizSvc, janitorTTL), janitorCronSpec); err != nil {
		return fmt.Errorf("schedule janitor: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: router,
	}
	go func() {
		logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runCleanup(cfg *config.Config) error {
	_, emb, err := buildAI(cfg)
	if err != nil {
		return fmt.Errorf("init ai: %w", err)
	}
	index, database, err := buildIndex(cfg, emb)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}
	if database != nil {
		defer database.Close()
	}
	ctx := context.Background()
	if err := index.Clear(ctx); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	logutil.GetLogger(ctx).Info("vector store cleared", zap.String("namespace", cfg.Vector.Namespace))
	return nil
}

// buildAI wires the configured provider, or both of them behind a failover
// group when AI_PROVIDER=group.
func buildAI(cfg *config.Config) (ai.IGenerator, ai.IEmbedder, error) {
	newPair := func(name string, args interface{}) (ai.IGenerator, ai.IEmbedder, error) {
		provider, err := ai.NewProvider(name, args)
		if err != nil {
			return nil, nil, err
		}
		return ai.NewGenerator(provider, cfg.AI.Model), ai.NewEmbedder(provider, cfg.AI.EmbedModel), nil
	}

	switch cfg.AI.Provider {
	case "openai":
		return newPair("openai", map[string]interface{}{
			"api_key":  cfg.AI.OpenAIAPIKey,
			"base_url": cfg.AI.OpenAIBaseURL,
		})
	case "gemini":
		return newPair("gemini", map[string]interface{}{
			"api_key": cfg.AI.GeminiAPIKey,
		})
	case "group":
		var gens []ai.GeneratorEntry
		var embs []ai.EmbedderEntry
		if cfg.AI.OpenAIAPIKey != "" {
			gen, emb, err := newPair("openai", map[string]interface{}{
				"api_key":  cfg.AI.OpenAIAPIKey,
				"base_url": cfg.AI.OpenAIBaseURL,
			})
			if err != nil {
				return nil, nil, err
			}
			gens = append(gens, ai.GeneratorEntry{Name: "openai", Generator: gen})
			embs = append(embs, ai.EmbedderEntry{Name: "openai", Embedder: emb})
		}
		if cfg.AI.GeminiAPIKey != "" {
			gen, emb, err := newPair("gemini", map[string]interface{}{
				"api_key": cfg.AI.GeminiAPIKey,
			})
			if err != nil {
				return nil, nil, err
			}
			gens = append(gens, ai.GeneratorEntry{Name: "gemini", Generator: gen})
			embs = append(embs, ai.EmbedderEntry{Name: "gemini", Embedder: emb})
		}
		return ai.NewGroupGenerator(gens), ai.NewGroupEmbedder(embs), nil
	default:
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.AI.Provider)
	}
}

func buildIndex(cfg *config.Config, emb ai.IEmbedder) (vectorindex.Index, *sql.DB, error) {
	switch cfg.Vector.Store {
	case "pgvector":
		database, err := db.Open(cfg.Vector.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.ApplyMigrations(database); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		index, err := vectorindex.NewPGIndex(database, emb, map[string]interface{}{
			"namespace": cfg.Vector.Namespace,
		})
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return index, database, nil
	default:
		index, err := vectorindex.New(cfg.Vector.Store, emb, map[string]interface{}{
			"namespace": cfg.Vector.Namespace,
			"path":      cfg.Vector.ChromemPath,
		})
		if err != nil {
			return nil, nil, err
		}
		return index, nil, nil
	}
}

func buildArchive(cfg *config.Config) (filestore.Store, error) {
	switch cfg.Archive.Type {
	case "", "none":
		return nil, nil
	case "local":
		return filestore.New("local", map[string]interface{}{
			"dir": cfg.Archive.Dir,
		})
	case "s3":
		return filestore.New("s3", map[string]interface{}{
			"endpoint":   cfg.Archive.S3.Endpoint,
			"secret_id":  cfg.Archive.S3.SecretID,
			"secret_key": cfg.Archive.S3.SecretKey,
			"bucket":     cfg.Archive.S3.Bucket,
			"region":     cfg.Archive.S3.Region,
			"use_ssl":    cfg.Archive.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.Archive.Type)
	}
}
