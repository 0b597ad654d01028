package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
)

type pgConfig struct {
	Namespace string `json:"namespace"`
}

// pgIndex stores chunk embeddings in postgres and ranks by cosine distance.
type pgIndex struct {
	db        *sql.DB
	namespace string
	embedder  ai.IEmbedder
}

// NewPGIndex builds a postgres-backed index over an already-open database.
// The database carries the pgvector extension and the chunks table from the
// embedded migrations.
func NewPGIndex(db *sql.DB, embedder ai.IEmbedder, args interface{}) (Index, error) {
	cfg := &pgConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("pgvector index requires a database")
	}
	if embedder == nil {
		return nil, fmt.Errorf("pgvector index requires an embedder")
	}
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" {
		return nil, fmt.Errorf("pgvector namespace is required")
	}
	return &pgIndex{db: db, namespace: namespace, embedder: embedder}, nil
}

func (x *pgIndex) Upsert(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		emb, err := x.embedder.Embed(ctx, chunk.Text, TaskDocument)
		if err != nil {
			return fmt.Errorf("embed chunk at offset %d: %w", chunk.SourceOffset, err)
		}
		rows = append(rows, map[string]interface{}{
			"namespace":     x.namespace,
			"content":       chunk.Text,
			"source_offset": chunk.SourceOffset,
			"embedding":     pgvector.NewVector(emb),
		})
	}
	query, args, err := builder.BuildInsert("chunks", rows)
	if err != nil {
		return err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	// single statement: either the whole batch lands or none of it does
	if _, err := x.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (x *pgIndex) Query(ctx context.Context, text string, k int) ([]model.Chunk, error) {
	if strings.TrimSpace(text) == "" || k <= 0 {
		return nil, nil
	}
	emb, err := x.embedder.Embed(ctx, text, TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	const query = `
		SELECT content, source_offset
		FROM chunks
		WHERE namespace = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := x.db.QueryContext(ctx, query, x.namespace, pgvector.NewVector(emb), k)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()
	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		if err := rows.Scan(&chunk.Text, &chunk.SourceOffset); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (x *pgIndex) Clear(ctx context.Context) error {
	query, args, err := builder.BuildDelete("chunks", map[string]interface{}{"namespace": x.namespace})
	if err != nil {
		return err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := x.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	return nil
}
