package vectorindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
)

type chromemConfig struct {
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
}

// chromemIndex keeps the whole index in process memory (optionally persisted
// to disk), one chromem collection per namespace.
type chromemIndex struct {
	mu        sync.Mutex
	db        *chromem.DB
	namespace string
	embedder  ai.IEmbedder
	col       *chromem.Collection
}

func init() {
	Register("chromem", createChromemIndex)
}

func createChromemIndex(embedder ai.IEmbedder, args interface{}) (Index, error) {
	cfg := &chromemConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("chromem index requires an embedder")
	}
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" {
		return nil, fmt.Errorf("chromem namespace is required")
	}
	var db *chromem.DB
	var err error
	if cfg.Path != "" {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	idx := &chromemIndex{db: db, namespace: namespace, embedder: embedder}
	if idx.col, err = idx.openCollection(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *chromemIndex) openCollection() (*chromem.Collection, error) {
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return x.embedder.Embed(ctx, text, TaskQuery)
	}
	col, err := x.db.GetOrCreateCollection(x.namespace, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", x.namespace, err)
	}
	return col, nil
}

func (x *chromemIndex) Upsert(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	// embed everything up front so a failing embedder leaves the index untouched
	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		emb, err := x.embedder.Embed(ctx, chunk.Text, TaskDocument)
		if err != nil {
			return fmt.Errorf("embed chunk at offset %d: %w", chunk.SourceOffset, err)
		}
		docs = append(docs, chromem.Document{
			ID:        chunkID(chunk),
			Content:   chunk.Text,
			Embedding: emb,
			Metadata:  map[string]string{"source_offset": strconv.Itoa(chunk.SourceOffset)},
		})
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (x *chromemIndex) Query(ctx context.Context, text string, k int) ([]model.Chunk, error) {
	if strings.TrimSpace(text) == "" || k <= 0 {
		return nil, nil
	}
	x.mu.Lock()
	col := x.col
	x.mu.Unlock()
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := col.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	chunks := make([]model.Chunk, 0, len(results))
	for _, res := range results {
		offset, _ := strconv.Atoi(res.Metadata["source_offset"])
		chunks = append(chunks, model.Chunk{Text: res.Content, SourceOffset: offset})
	}
	return chunks, nil
}

func (x *chromemIndex) Clear(ctx context.Context) error {
	_ = ctx
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.db.DeleteCollection(x.namespace); err != nil {
		return fmt.Errorf("delete collection %s: %w", x.namespace, err)
	}
	col, err := x.openCollection()
	if err != nil {
		return err
	}
	x.col = col
	return nil
}

func chunkID(chunk model.Chunk) string {
	hash := sha256.Sum256([]byte(chunk.Text))
	return hex.EncodeToString(hash[:8]) + "-" + strconv.Itoa(chunk.SourceOffset)
}
