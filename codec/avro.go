package codec

import (
	"encoding/json"

	"github.com/linkedin/goavro/v2"
	"github.com/pkg/errors"
)

// Avro returns a Codec for the given Avro schema.
//
// Encode takes either the JSON text of a value, as a string, a byte
// slice or a json.RawMessage, or a native value in the form goavro
// expects, and returns its binary encoding. Decode writes the JSON
// text of a binary value to a *[]byte or a *string, or the native
// value to an *interface{}.
func Avro(schema string) (Codec, error) {
	c, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, errors.Wrap(err, "invalid Avro schema")
	}
	return AvroFrom(c), nil
}

// AvroFrom returns a Codec using an already compiled schema.
func AvroFrom(c *goavro.Codec) Codec {
	return &avroCodec{codec: c}
}

type avroCodec struct {
	codec *goavro.Codec
}

func (a *avroCodec) Encode(v interface{}) ([]byte, error) {
	var text []byte
	switch t := v.(type) {
	case string:
		text = []byte(t)
	case []byte:
		text = t
	case json.RawMessage:
		text = t
	}
	if text != nil {
		native, _, err := a.codec.NativeFromTextual(text)
		if err != nil {
			return nil, errors.Wrap(err, "value does not match the Avro schema")
		}
		v = native
	}
	b, err := a.codec.BinaryFromNative(nil, v)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode Avro value")
	}
	return b, nil
}

func (a *avroCodec) Decode(data []byte, target interface{}) error {
	native, rest, err := a.codec.NativeFromBinary(data)
	if err != nil {
		return errors.Wrap(err, "cannot decode Avro value")
	}
	if len(rest) > 0 {
		return errors.Errorf("%d trailing bytes after Avro value", len(rest))
	}
	switch t := target.(type) {
	case *interface{}:
		*t = native
		return nil
	case *[]byte, *string:
		text, err := a.codec.TextualFromNative(nil, native)
		if err != nil {
			return errors.Wrap(err, "cannot encode Avro value as JSON")
		}
		return Text().Decode(text, target)
	default:
		return errors.Errorf("cannot decode Avro value into %T", target)
	}
}
