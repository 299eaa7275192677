package message

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
)

// HeaderSet maps header keys to header values.
type HeaderSet map[string]string

// Records converts hs into Sarama record headers, sorted by key so
// that the wire representation is stable.
func (hs HeaderSet) Records() []sarama.RecordHeader {
	if len(hs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(hs))
	for k := range hs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rhs := make([]sarama.RecordHeader, len(keys))
	for i, k := range keys {
		rhs[i] = sarama.RecordHeader{Key: []byte(k), Value: []byte(hs[k])}
	}
	return rhs
}

// HeaderPair is a single entry of a structured header list.
type HeaderPair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// HeaderSpec describes where the headers of a message come from.
// When Raw is true, JSON is parsed as a flat JSON object and Pairs
// is ignored. Otherwise Pairs is folded in order.
type HeaderSpec struct {
	Raw   bool
	Pairs []HeaderPair
	JSON  string
}

// HeaderFormatError is returned when raw headers cannot be parsed.
type HeaderFormatError struct {
	cause error
}

func (e *HeaderFormatError) Error() string {
	return "headers must be valid structured data"
}

// Unwrap returns the parse error.
func (e *HeaderFormatError) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *HeaderFormatError) Cause() error { return e.cause }

// ResolveHeaders builds the HeaderSet described by spec.
func ResolveHeaders(spec HeaderSpec) (HeaderSet, error) {
	if spec.Raw {
		return parseHeaders(spec.JSON)
	}

	opts := make([]Option, len(spec.Pairs))
	for i, p := range spec.Pairs {
		opts[i] = Header(p.Key, p.Value)
	}
	return make(HeaderSet, len(spec.Pairs)).Apply(opts...), nil
}

func parseHeaders(text string) (HeaderSet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &HeaderFormatError{cause: err}
	}
	if fields == nil {
		return nil, &HeaderFormatError{cause: errors.New("headers are not a JSON object")}
	}

	hs := make(HeaderSet, len(fields))
	for k, raw := range fields {
		v, err := headerValue(raw)
		if err != nil {
			return nil, &HeaderFormatError{cause: errors.Wrapf(err, "header %q", k)}
		}
		hs[k] = v
	}
	return hs, nil
}

// headerValue renders a scalar JSON value as a header value. Strings
// are unquoted, other scalars keep their JSON text.
func headerValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("empty value")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("nested values are not allowed")
	}
	return string(raw), nil
}
