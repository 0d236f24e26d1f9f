// Package textutil provides text processing helpers for the analysis
// pipeline: cleaning, chunking, truncation and vector math.
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the default chunk window in Unicode characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default overlap between adjacent chunks.
	DefaultChunkOverlap = 200
)

// ConfigurationError reports invalid chunking parameters.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// unsafeCharRegex strips everything outside a safe punctuation set.
	// @ and + survive so emails and international phone numbers remain
	// detectable after cleaning.
	unsafeCharRegex = regexp.MustCompile(`[^\w\s.,!?;:()\-@+]`)
)

// CleanText collapses whitespace runs to single spaces and removes characters
// outside the safe set.
func CleanText(s string) string {
	s = unsafeCharRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitIntoChunks splits text into overlapping chunks of chunkSize Unicode
// characters, advancing by chunkSize-overlap each step. Text that fits in one
// window is returned as a single chunk. overlap >= chunkSize would never
// terminate and is rejected with a ConfigurationError.
func SplitIntoChunks(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("chunk size must be positive, got %d", chunkSize)}
	}
	if overlap < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("chunk overlap must not be negative, got %d", overlap)}
	}
	if overlap >= chunkSize {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("chunk overlap %d must be less than chunk size %d", overlap, chunkSize)}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}, nil
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// TruncateString truncates s to maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// TruncateWithEllipsis truncates s to maxLen Unicode characters and appends
// "..." when anything was cut.
func TruncateWithEllipsis(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return TruncateString(s, maxLen) + "..."
}

// CosineSimilarity computes the cosine similarity of two vectors in [-1, 1].
// Mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// HashString returns the MD5 hex digest of s, used for stable cache keys.
func HashString(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])
}

// Dedupe removes duplicates from items preserving first-seen order, keeping
// at most max entries. max <= 0 means unbounded.
func Dedupe(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	var result []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
		if max > 0 && len(result) >= max {
			break
		}
	}
	return result
}
