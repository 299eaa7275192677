// Package schema binds message payloads to a schema registered in a
// Confluent compatible schema registry.
//
// An Encoder looks up the latest schema id registered for an event
// name once, then encodes every JSON payload it is given against that
// id. The result uses the Confluent wire format: a zero magic byte,
// the schema id as a 4-byte big-endian integer, then the Avro binary
// body.
package schema
