package codec

import "sync"

// Encoder is a value encoded on first use. It implements
// sarama.Encoder, so it can be used as a message key or value.
type Encoder interface {
	Encode() ([]byte, error)
	Length() int
}

// NewEncoder returns an Encoder encoding v with c.
func NewEncoder(c Codec, v interface{}) Encoder {
	return &lazyEncoder{codec: c, v: v}
}

// StringEncoder returns an Encoder for s.
func StringEncoder(s string) Encoder {
	return NewEncoder(Text(), s)
}

// BytesEncoder returns an Encoder for b. b must not be modified
// afterwards.
func BytesEncoder(b []byte) Encoder {
	return NewEncoder(Text(), b)
}

type lazyEncoder struct {
	codec Codec
	v     interface{}

	once sync.Once
	data []byte
	err  error
}

func (e *lazyEncoder) encode() {
	e.once.Do(func() {
		e.data, e.err = e.codec.Encode(e.v)
	})
}

func (e *lazyEncoder) Encode() ([]byte, error) {
	e.encode()
	return e.data, e.err
}

// Length is 0 when the value cannot be encoded.
func (e *lazyEncoder) Length() int {
	e.encode()
	return len(e.data)
}
