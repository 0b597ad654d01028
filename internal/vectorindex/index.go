package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
)

// Embedding task hints; providers that distinguish retrieval directions
// (gemini) use them, others ignore them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Index is a nearest-neighbor store over chunk embeddings in one logical
// namespace.
//
// Upsert embeds every chunk before writing anything: an embedding failure
// fails the whole batch with no partial writes visible to callers. Query on
// an empty index returns an empty result, not an error. Clear is idempotent.
//
// Implementations are safe for concurrent Upsert/Query, but Clear gives no
// isolation from in-flight calls; callers must not interleave cleanup with
// ingestion or quiz-taking in the same namespace.
type Index interface {
	Upsert(ctx context.Context, chunks []model.Chunk) error
	Query(ctx context.Context, text string, k int) ([]model.Chunk, error)
	Clear(ctx context.Context) error
}

// Factory builds an Index over the given embedder from store-specific args.
type Factory func(embedder ai.IEmbedder, args interface{}) (Index, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(store string, embedder ai.IEmbedder, args interface{}) (Index, error) {
	key := strings.ToLower(strings.TrimSpace(store))
	if key == "" {
		return nil, fmt.Errorf("vector store type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store: %s", store)
	}
	return factory(embedder, args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("vector store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}
