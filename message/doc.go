// Package message contains the types that make up a single Kafka
// message before it is handed to the producer: its topic, its
// payload and its headers.
//
// A payload is either RawText, the JSON text of an input record or a
// string supplied by the user, or SchemaEncoded, the bytes produced by
// a schema registry. Both satisfy sarama.Encoder.
//
// Headers are resolved from a HeaderSpec, either from an ordered list
// of key/value pairs:
//
//    hs, err := ResolveHeaders(HeaderSpec{Pairs: []HeaderPair{{"subject", "potatoes"}}})
//
// or from a JSON object given as text:
//
//    hs, err := ResolveHeaders(HeaderSpec{Raw: true, JSON: `{"subject": "potatoes"}`})
//
// In both cases, when a key is defined more than once, the value
// defined last wins.
package message
