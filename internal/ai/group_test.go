package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type flakyGenerator struct {
	err   error
	reply string
	calls int
}

func (f *flakyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *flakyGenerator) Chat(ctx context.Context, history []Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestGroupGeneratorFailsOver(t *testing.T) {
	broken := &flakyGenerator{err: errors.New("quota exceeded")}
	healthy := &flakyGenerator{reply: "ok"}
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "primary", Generator: broken},
		{Name: "fallback", Generator: healthy},
	})

	out, err := group.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, 1, broken.calls)
	require.Equal(t, 1, healthy.calls)
}

func TestGroupGeneratorAllFail(t *testing.T) {
	wantErr := errors.New("down")
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "a", Generator: &flakyGenerator{err: errors.New("first")}},
		{Name: "b", Generator: &flakyGenerator{err: wantErr}},
	})

	_, err := group.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.ErrorIs(t, err, wantErr)
}

func TestGroupGeneratorEmpty(t *testing.T) {
	require.Nil(t, NewGroupGenerator(nil))
}

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fixedEmbedder) ModelName() string { return "fixed" }

func TestGroupEmbedderFailsOver(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "a", Embedder: &fixedEmbedder{err: errors.New("down")}},
		{Name: "b", Embedder: &fixedEmbedder{vec: []float32{1, 2}}},
	})

	vec, err := group.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2}, vec)
	require.Equal(t, "a|b", group.ModelName())
}

func TestNewProviderUnknownName(t *testing.T) {
	_, err := NewProvider("nonexistent", map[string]interface{}{})
	require.Error(t, err)
}

func TestNewProviderRequiresName(t *testing.T) {
	_, err := NewProvider("  ", nil)
	require.Error(t, err)
}
