package message

import (
	"github.com/heetch/kpub/codec"
)

// Kind identifies which representation a Payload holds.
type Kind int

const (
	// KindRawText payloads are UTF-8 text sent as is.
	KindRawText Kind = iota
	// KindSchemaEncoded payloads are opaque bytes produced by a schema registry.
	KindSchemaEncoded
)

func (k Kind) String() string {
	switch k {
	case KindRawText:
		return "raw"
	case KindSchemaEncoded:
		return "schema"
	}
	return "unknown"
}

// Payload is the value of a Kafka message. The zero value is an
// empty RawText payload.
type Payload struct {
	kind Kind
	enc  codec.Encoder
}

// RawText creates a text payload.
func RawText(s string) Payload {
	return Payload{kind: KindRawText, enc: codec.StringEncoder(s)}
}

// SchemaEncoded creates a payload holding schema registry encoded
// bytes.
func SchemaEncoded(b []byte) Payload {
	return Payload{kind: KindSchemaEncoded, enc: codec.BytesEncoder(b)}
}

// Kind returns the representation held by p.
func (p Payload) Kind() Kind {
	return p.kind
}

// Encode implements sarama.Encoder.
func (p Payload) Encode() ([]byte, error) {
	if p.enc == nil {
		return []byte{}, nil
	}
	return p.enc.Encode()
}

// Length implements sarama.Encoder.
func (p Payload) Length() int {
	if p.enc == nil {
		return 0
	}
	return p.enc.Length()
}

// TopicMessage is a message ready to be added to a batch.
type TopicMessage struct {
	// Kafka topic.
	Topic string

	// Value of the Kafka message.
	Payload Payload

	// Headers of the message.
	Headers HeaderSet
}
