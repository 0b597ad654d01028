package quiz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

func TestTopicExtractorParsesNumberedList(t *testing.T) {
	gen := &stubGenerator{responses: []string{"1. Cell biology\n2. Genetics\n\n3. Evolution"}}
	extractor := NewTopicExtractor(gen)

	topics, err := extractor.Extract(context.Background(), "some study text", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"Cell biology", "Genetics", "Evolution"}, topics)
}

func TestTopicExtractorStripsBulletMarkers(t *testing.T) {
	gen := &stubGenerator{responses: []string{"- Photosynthesis basics\n* Chlorophyll function\n• Light reactions"}}
	extractor := NewTopicExtractor(gen)

	topics, err := extractor.Extract(context.Background(), "text", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"Photosynthesis basics", "Chlorophyll function", "Light reactions"}, topics)
}

func TestTopicExtractorCapsAtRequestedCount(t *testing.T) {
	gen := &stubGenerator{responses: []string{"One\nTwo\nThree\nFour\nFive"}}
	extractor := NewTopicExtractor(gen)

	topics, err := extractor.Extract(context.Background(), "text", 2)
	require.NoError(t, err)
	require.Len(t, topics, 2)
}

func TestTopicExtractorCropsLongInput(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Topic"}}
	extractor := NewTopicExtractor(gen)

	long := strings.Repeat("a", 9000)
	_, err := extractor.Extract(context.Background(), long, 3)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	require.Less(t, len(gen.prompts[0]), 7500)
}

func TestTopicExtractorGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{responses: []string{""}}
	extractor := NewTopicExtractor(gen)

	_, err := extractor.Extract(context.Background(), "text", 3)
	require.ErrorIs(t, err, apperr.ErrGeneration)
}

func TestTopicExtractorBlankOutput(t *testing.T) {
	gen := &stubGenerator{responses: []string{"\n  \n"}}
	extractor := NewTopicExtractor(gen)

	_, err := extractor.Extract(context.Background(), "text", 3)
	require.ErrorIs(t, err, apperr.ErrGeneration)
}
