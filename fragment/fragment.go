package fragment

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed reports stored bytes that do not decode to a Fragment.
var ErrMalformed = errors.New("fragment: malformed payload")

// Fragment is a single rendered content value.
type Fragment struct {
	// Content is the rendered markup or text, reproduced byte-for-byte
	// across a serialization round trip.
	Content string `msgpack:"content"`
}

// Formatter converts fragments to and from their stored byte form.
//
// Contract:
// - Round trip: Deserialize(Serialize(f)) == f for every fragment.
// - Concurrency: implementations must be safe for concurrent use.
type Formatter interface {
	// Serialize encodes a fragment for storage.
	Serialize(f Fragment) ([]byte, error)

	// Deserialize decodes stored bytes. Malformed input yields an error
	// wrapping ErrMalformed.
	Deserialize(data []byte) (Fragment, error)
}

// MsgpackFormatter serializes fragments as msgpack maps. The encoding is
// self-describing, so content is reconstructed without external schema.
type MsgpackFormatter struct{}

// NewFormatter returns the default msgpack-backed formatter.
func NewFormatter() *MsgpackFormatter {
	return &MsgpackFormatter{}
}

// Serialize encodes the fragment.
func (MsgpackFormatter) Serialize(f Fragment) ([]byte, error) {
	data, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("fragment: encode: %w", err)
	}
	return data, nil
}

// Deserialize decodes stored bytes into a fragment.
func (MsgpackFormatter) Deserialize(data []byte) (Fragment, error) {
	var f Fragment
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Fragment{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return f, nil
}

// Ensure MsgpackFormatter implements Formatter
var _ Formatter = (*MsgpackFormatter)(nil)
