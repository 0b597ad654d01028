package filestore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testReadSeekCloser struct {
	*strings.Reader
}

func (r *testReadSeekCloser) Close() error { return nil }

func TestLocalStoreSaveOpenRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)

	content := "archived document body"
	reader := &testReadSeekCloser{Reader: strings.NewReader(content)}
	require.NoError(t, store.Save(context.Background(), "doc.txt", reader, int64(len(content))))

	rc, err := store.Open(context.Background(), "doc.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, content, string(data))
}

func TestLocalStoreRejectsPathTraversalKeys(t *testing.T) {
	store, err := New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	reader := &testReadSeekCloser{Reader: strings.NewReader("x")}
	require.Error(t, store.Save(context.Background(), "../escape.txt", reader, 1))
	_, err = store.Open(context.Background(), "sub/dir.txt")
	require.Error(t, err)
}

func TestLocalStoreRequiresDir(t *testing.T) {
	_, err := New("local", map[string]interface{}{})
	require.Error(t, err)
}

func TestNewUnknownStoreType(t *testing.T) {
	_, err := New("ftp", map[string]interface{}{})
	require.Error(t, err)
}
