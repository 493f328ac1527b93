package types

import (
	"encoding/json"
	"fmt"

	collcodec "cosmossdk.io/collections/codec"
)

// JSONValue builds a collections value codec for a hook state type. The
// module carries no protobuf layer, so state objects are persisted through
// their JSON encoding; the codec interface is the integration seam
// collections requires.
func JSONValue[T any](name string) collcodec.ValueCodec[T] {
	return jsonValueCodec[T]{name: name}
}

type jsonValueCodec[T any] struct {
	name string
}

func (c jsonValueCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (c jsonValueCodec[T]) Decode(bz []byte) (T, error) {
	var value T
	err := json.Unmarshal(bz, &value)
	return value, err
}

func (c jsonValueCodec[T]) EncodeJSON(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (c jsonValueCodec[T]) DecodeJSON(bz []byte) (T, error) {
	var value T
	err := json.Unmarshal(bz, &value)
	return value, err
}

func (c jsonValueCodec[T]) Stringify(value T) string {
	return fmt.Sprintf("%v", value)
}

func (c jsonValueCodec[T]) ValueType() string {
	return c.name
}
