package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/chunker"
	"github.com/quizlearn/studyquiz/internal/filestore"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
	"github.com/quizlearn/studyquiz/internal/vectorindex"
)

const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

// Service runs the ingestion pipeline: normalize, chunk, embed, index, and
// archive the raw document. A failed run can leave chunks from an earlier
// successful upload in the index; re-ingestion is only clean after an
// explicit cleanup.
type Service struct {
	splitter *chunker.Splitter
	index    vectorindex.Index
	archive  filestore.Store
}

func NewService(splitter *chunker.Splitter, index vectorindex.Index, archive filestore.Store) *Service {
	return &Service{splitter: splitter, index: index, archive: archive}
}

// Ingest chunks text and upserts the chunks into the vector index, returning
// the number of chunks written.
func (s *Service) Ingest(ctx context.Context, rawText, format string) (int, error) {
	logger := logutil.GetLogger(ctx)
	text := rawText
	if strings.EqualFold(format, FormatMarkdown) {
		text = ExtractMarkdownText(rawText)
	}
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := s.index.Upsert(ctx, chunks); err != nil {
		logger.Error("index upsert failed", zap.Int("chunks", len(chunks)), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", apperr.ErrIngestion, err)
	}
	logger.Info("document ingested", zap.Int("chunks", len(chunks)), zap.Int("size", len(rawText)))
	s.archiveDocument(ctx, rawText)
	return len(chunks), nil
}

// archiveDocument keeps the raw upload around for re-ingestion after a
// cleanup. Archive failures never fail the upload.
func (s *Service) archiveDocument(ctx context.Context, rawText string) {
	if s.archive == nil {
		return
	}
	hash := sha256.Sum256([]byte(rawText))
	key := hex.EncodeToString(hash[:]) + ".txt"
	reader := newStringReadSeeker(rawText)
	if err := s.archive.Save(ctx, key, reader, int64(len(rawText))); err != nil {
		logutil.GetLogger(ctx).Warn("failed to archive document", zap.String("key", key), zap.Error(err))
		return
	}
	logutil.GetLogger(ctx).Info("document archived", zap.String("key", key))
}

type stringReadSeeker struct {
	*strings.Reader
}

func newStringReadSeeker(s string) filestore.ReadSeekCloser {
	return &stringReadSeeker{Reader: strings.NewReader(s)}
}

func (r *stringReadSeeker) Close() error { return nil }

var _ io.ReadSeeker = (*stringReadSeeker)(nil)
