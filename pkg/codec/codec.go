package codec

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec defines the encoding used for cache entries on disk. Encoded
// bytes must round-trip: Decode(Encode(v)) reproduces v for any value
// the codec supports.
type Codec interface {
	Encode(value any) ([]byte, error)
	Decode(data []byte, dest any) error
	Name() string
}

// JSON encodes entries as indented JSON. It is the default codec.
type JSON struct{}

var _ Codec = (*JSON)(nil)

func (JSON) Encode(value any) ([]byte, error) {
	return json.MarshalIndent(value, "", "  ")
}

func (JSON) Decode(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

func (JSON) Name() string { return "json" }

// Msgpack encodes entries as MessagePack. Denser than JSON and keeps
// integer types across the round-trip; use it when cache files are
// large or never read by humans.
type Msgpack struct{}

var _ Codec = (*Msgpack)(nil)

func (Msgpack) Encode(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (Msgpack) Decode(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}

func (Msgpack) Name() string { return "msgpack" }
