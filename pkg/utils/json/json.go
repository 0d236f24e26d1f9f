// Package json wraps JSON serialization behind package-level functions.
// On amd64/arm64 it delegates to sonic; elsewhere it falls back to
// encoding/json, so callers never branch on architecture themselves.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder creates a streaming encoder for w.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder creates a streaming decoder for r.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Encoder is the streaming encode interface shared by both backends.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder is the streaming decode interface shared by both backends.
type Decoder interface {
	Decode(v interface{}) error
}

// RawMessage is a raw encoded JSON value, deferred for later decoding.
type RawMessage = stdjson.RawMessage

func init() {
	// Sonic only ships JIT support for amd64 and arm64.
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		Marshal = sonic.Marshal
		Unmarshal = sonic.Unmarshal
		NewEncoder = func(w io.Writer) Encoder {
			return sonic.ConfigDefault.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		}
		usingSonic = true
	} else {
		Marshal = stdjson.Marshal
		Unmarshal = stdjson.Unmarshal
		NewEncoder = func(w io.Writer) Encoder {
			return stdjson.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return stdjson.NewDecoder(r)
		}
	}
}

// IsUsingSonic reports whether the sonic backend is active.
func IsUsingSonic() bool {
	return usingSonic
}
