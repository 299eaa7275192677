package batch

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/heetch/kpub/codec"
	"github.com/heetch/kpub/message"
)

// Mode selects where payloads come from. It is chosen once per batch.
type Mode int

const (
	// ModeInputData sends the JSON serialization of each record.
	ModeInputData Mode = iota
	// ModeMessage sends the explicit message of each record.
	ModeMessage
)

// Encoder binds a JSON payload to a registered schema.
// It is implemented by *schema.Encoder.
type Encoder interface {
	Encode(value []byte) (message.Payload, error)
}

// Record is one input record along with the parameters resolved for it.
type Record struct {
	// Data is the JSON representation of the record.
	Data json.RawMessage
	// Topic the record is published to.
	Topic string
	// Message is the payload used in ModeMessage.
	Message string
	// Headers describes the headers of the message.
	Headers message.HeaderSpec
}

// TopicError is returned when a record has no topic.
type TopicError struct {
	Index int
}

func (e *TopicError) Error() string {
	return "record " + strconv.Itoa(e.Index) + ": messages require a non-empty topic"
}

// Assembler builds a Request out of records. It is not safe for
// concurrent use.
type Assembler struct {
	mode    Mode
	encoder Encoder
	json    codec.Codec

	req Request
	n   int
}

// NewAssembler returns an Assembler using mode for every record. When
// enc is not nil, payloads are schema encoded with it.
func NewAssembler(mode Mode, enc Encoder) *Assembler {
	return &Assembler{
		mode:    mode,
		encoder: enc,
		json:    codec.JSON(),
	}
}

// Add appends rec to the batch. Nothing is added when an error is
// returned.
func (a *Assembler) Add(rec Record) error {
	idx := a.n
	payload, err := a.payload(rec)
	if err != nil {
		return err
	}
	if rec.Topic == "" {
		return &TopicError{Index: idx}
	}
	headers, err := message.ResolveHeaders(rec.Headers)
	if err != nil {
		return err
	}
	a.req.add(message.TopicMessage{
		Topic:   rec.Topic,
		Payload: payload,
		Headers: headers,
	})
	a.n++
	return nil
}

func (a *Assembler) payload(rec Record) (message.Payload, error) {
	var text []byte
	switch a.mode {
	case ModeInputData:
		data := rec.Data
		if len(data) == 0 {
			data = json.RawMessage("{}")
		}
		b, err := a.json.Encode(data)
		if err != nil {
			return message.Payload{}, errors.Wrapf(err, "record %d: cannot serialize input data", a.n)
		}
		text = b
	case ModeMessage:
		text = []byte(rec.Message)
	default:
		return message.Payload{}, errors.Errorf("unknown payload mode %d", a.mode)
	}
	if a.encoder != nil {
		return a.encoder.Encode(text)
	}
	return message.RawText(string(text)), nil
}

// Len returns the number of records added so far.
func (a *Assembler) Len() int {
	return a.n
}

// Request returns the assembled batch with the given delivery
// settings. Records added afterwards do not change it.
func (a *Assembler) Request(d Delivery) *Request {
	req := &Request{Delivery: d}
	if len(a.req.Topics) > 0 {
		req.Topics = make([]TopicMessages, len(a.req.Topics))
	}
	for i, t := range a.req.Topics {
		req.Topics[i] = TopicMessages{
			Topic:    t.Topic,
			Messages: append([]message.TopicMessage(nil), t.Messages...),
		}
	}
	return req
}
