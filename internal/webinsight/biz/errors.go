package biz

import (
	"errors"
	"fmt"
)

// ErrInvalidURL marks requests whose URL could not be canonicalized.
var ErrInvalidURL = errors.New("invalid url")

// ParseError reports an LLM response that could not be decoded as the
// expected JSON document.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse LLM response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmbeddingError reports that no chunk of a website could be embedded.
type EmbeddingError struct {
	Total int
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("all %d chunk embeddings failed: %v", e.Total, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
