// Package codec converts record values to the bytes sent to Kafka.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Codec encodes values to bytes and decodes them back.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, target interface{}) error
}

// Text returns a Codec for values that already are text. Strings,
// byte slices and JSON documents are written verbatim.
func Text() Codec {
	return textCodec{}
}

type textCodec struct{}

func (textCodec) Encode(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case json.RawMessage:
		return t, nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return nil, errors.Errorf("cannot encode %T as text", v)
	}
}

func (textCodec) Decode(data []byte, target interface{}) error {
	switch t := target.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = append((*t)[:0], data...)
	default:
		return errors.Errorf("cannot decode text into %T", target)
	}
	return nil
}

// JSON returns a Codec producing compact JSON. A json.RawMessage is
// compacted rather than quoted. HTML characters are not escaped.
func JSON() Codec {
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "cannot encode JSON")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (jsonCodec) Decode(data []byte, target interface{}) error {
	return errors.Wrap(json.Unmarshal(data, target), "cannot decode JSON")
}
