package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.overlap)
}

func TestNew_OverlapClampedBelowChunkSize(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(150))
	assert.Equal(t, 25, c.overlap)
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := New().Split([]domain.Page{{Number: 1, Text: "kısa metin"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, "kısa metin", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[0].Page)
}

func TestSplit_ExactWindowSizeSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := New().Split([]domain.Page{{Number: 1, Text: text}})
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Content, 1000)
}

func TestSplit_OverlapIsExact(t *testing.T) {
	c := New(WithChunkSize(10), WithOverlap(4))
	chunks := c.Split([]domain.Page{{Number: 1, Text: "abcdefghijklmnop"}})

	require.Len(t, chunks, 2)
	assert.Equal(t, "abcdefghij", chunks[0].Content)
	assert.Equal(t, "ghijklmnop", chunks[1].Content)
	// last 4 of the first window equal the first 4 of the second
	assert.Equal(t, chunks[0].Content[6:], chunks[1].Content[:4])
}

func TestSplit_ChunkCount(t *testing.T) {
	// count = ceil((L - O) / (W - O)) for L > W
	tests := []struct {
		length int
		want   int
	}{
		{500, 1},
		{1000, 1},
		{1001, 2},
		{1800, 2},
		{1801, 3},
		{2600, 3},
	}

	for _, tt := range tests {
		chunks := New().Split([]domain.Page{{Number: 1, Text: strings.Repeat("x", tt.length)}})
		assert.Len(t, chunks, tt.want, "length %d", tt.length)
	}
}

func TestSplit_RuneAware(t *testing.T) {
	// 600 two-byte runes exceed 1000 bytes but fit one 1000-rune window
	text := strings.Repeat("ş", 600)
	chunks := New().Split([]domain.Page{{Number: 1, Text: text}})
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplit_WindowsDoNotSpanPages(t *testing.T) {
	c := New(WithChunkSize(10), WithOverlap(2))
	chunks := c.Split([]domain.Page{
		{Number: 1, Text: strings.Repeat("a", 15)},
		{Number: 3, Text: "bbb"},
	})

	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[1].Page)
	assert.Equal(t, 3, chunks[2].Page)
	assert.NotContains(t, chunks[1].Content, "b")

	// positions run consecutively across pages
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
	}
}

func TestSplit_EmptyPagesYieldNothing(t *testing.T) {
	assert.Empty(t, New().Split(nil))
	assert.Empty(t, New().Split([]domain.Page{{Number: 1, Text: ""}}))
}
