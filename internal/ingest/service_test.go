package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizlearn/studyquiz/internal/chunker"
	"github.com/quizlearn/studyquiz/internal/filestore"
	"github.com/quizlearn/studyquiz/internal/model"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

type captureIndex struct {
	upserts   [][]model.Chunk
	upsertErr error
}

func (c *captureIndex) Upsert(ctx context.Context, chunks []model.Chunk) error {
	if c.upsertErr != nil {
		return c.upsertErr
	}
	c.upserts = append(c.upserts, chunks)
	return nil
}

func (c *captureIndex) Query(ctx context.Context, text string, k int) ([]model.Chunk, error) {
	return nil, nil
}

func (c *captureIndex) Clear(ctx context.Context) error { return nil }

type memArchive struct {
	saved map[string]string
}

func (a *memArchive) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if a.saved == nil {
		a.saved = map[string]string{}
	}
	a.saved[key] = string(data)
	return nil
}

func (a *memArchive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := a.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestIngestChunksAndIndexes(t *testing.T) {
	index := &captureIndex{}
	svc := NewService(chunker.New(50, 0), index, nil)

	text := "First sentence here. Second sentence here. Third sentence here."
	n, err := svc.Ingest(context.Background(), text, FormatPlain)
	require.NoError(t, err)
	require.Greater(t, n, 1)
	require.Len(t, index.upserts, 1)
	require.Len(t, index.upserts[0], n)
}

func TestIngestMarkdownStripsFormatting(t *testing.T) {
	index := &captureIndex{}
	svc := NewService(chunker.New(1000, 0), index, nil)

	_, err := svc.Ingest(context.Background(), "# Title\n\nBody text.", FormatMarkdown)
	require.NoError(t, err)
	require.Len(t, index.upserts, 1)
	require.Equal(t, "Title\n\nBody text.", index.upserts[0][0].Text)
}

func TestIngestEmptyInput(t *testing.T) {
	index := &captureIndex{}
	svc := NewService(chunker.New(1000, 0), index, nil)

	n, err := svc.Ingest(context.Background(), "", FormatPlain)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, index.upserts)
}

func TestIngestUpsertFailure(t *testing.T) {
	index := &captureIndex{upsertErr: errors.New("store down")}
	svc := NewService(chunker.New(1000, 0), index, nil)

	_, err := svc.Ingest(context.Background(), "some text", FormatPlain)
	require.ErrorIs(t, err, apperr.ErrIngestion)
}

func TestIngestArchivesRawDocument(t *testing.T) {
	index := &captureIndex{}
	archive := &memArchive{}
	svc := NewService(chunker.New(1000, 0), index, archive)

	_, err := svc.Ingest(context.Background(), "# Title\n\nBody.", FormatMarkdown)
	require.NoError(t, err)
	require.Len(t, archive.saved, 1)
	for _, data := range archive.saved {
		// the archive keeps the original markdown, not the flattened text
		require.Equal(t, "# Title\n\nBody.", data)
	}
}
