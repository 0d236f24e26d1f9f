package textutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/pkg/textutil"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "hello   world\n\tfoo", "hello world foo"},
		{"keeps safe punctuation", "Call us: (555) 123-4567, now!", "Call us: (555) 123-4567, now!"},
		{"keeps email and plus markers", "info@acme.com +1 555", "info@acme.com +1 555"},
		{"strips unsafe characters", "hello <world> & “quotes”", "hello world quotes"},
		{"trims edges", "  spaced  ", "spaced"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutil.CleanText(tt.input))
		})
	}
}

func TestSplitIntoChunksSingle(t *testing.T) {
	chunks, err := textutil.SplitIntoChunks("short text", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitIntoChunksExact(t *testing.T) {
	text := strings.Repeat("A", 1000)
	chunks, err := textutil.SplitIntoChunks(text, 250, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	for _, c := range chunks {
		assert.Len(t, c, 250)
	}
}

func TestSplitIntoChunksOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30)
	chunks, err := textutil.SplitIntoChunks(text, 100, 20)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Adjacent chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-20:])
		assert.True(t, strings.HasPrefix(chunks[i], tail))
	}

	// Dropping each chunk's leading overlap reconstructs the text.
	rebuilt := chunks[0]
	for i := 1; i < len(chunks); i++ {
		rebuilt += string([]rune(chunks[i])[20:])
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplitIntoChunksInvalidConfig(t *testing.T) {
	var cfgErr *textutil.ConfigurationError

	_, err := textutil.SplitIntoChunks("text", 100, 100)
	require.ErrorAs(t, err, &cfgErr)

	_, err = textutil.SplitIntoChunks("text", 100, 150)
	require.ErrorAs(t, err, &cfgErr)

	_, err = textutil.SplitIntoChunks("text", 0, 0)
	require.ErrorAs(t, err, &cfgErr)

	_, err = textutil.SplitIntoChunks("text", 100, -1)
	require.ErrorAs(t, err, &cfgErr)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", textutil.TruncateString("hello", 10))
	assert.Equal(t, "hel", textutil.TruncateString("hello", 3))
	// Rune-based, not byte-based.
	assert.Equal(t, "héll", textutil.TruncateString("héllo", 4))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "hello", textutil.TruncateWithEllipsis("hello", 5))
	assert.Equal(t, "hel...", textutil.TruncateWithEllipsis("hello", 3))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal vectors", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"opposite vectors", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"empty vectors", []float32{}, []float32{}, 0.0},
		{"mismatched lengths", []float32{1, 2}, []float32{1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, textutil.CosineSimilarity(tt.a, tt.b), 0.0001)
		})
	}
}

func TestHashString(t *testing.T) {
	hash1 := textutil.HashString("test")
	hash2 := textutil.HashString("test")
	assert.Equal(t, hash1, hash2)
	assert.NotEqual(t, hash1, textutil.HashString("other"))
	assert.Len(t, hash1, 32)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, textutil.Dedupe([]string{"a", "b", "a", "c", "b"}, 0))
	assert.Equal(t, []string{"a", "b"}, textutil.Dedupe([]string{"a", "b", "c"}, 2))
	assert.Nil(t, textutil.Dedupe(nil, 5))
}
