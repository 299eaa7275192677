package schema

import (
	"github.com/heetch/kpub/message"
)

// Binding names the registry and the event whose schema payloads
// are bound to.
type Binding struct {
	// URL of the schema registry.
	URL string
	// EventName is the namespace qualified subject the schema is
	// registered under.
	EventName string
}

// RegistryError is returned when the schema id cannot be resolved or
// a payload cannot be encoded. Its message is stable; the registry
// failure is available through Unwrap.
type RegistryError struct {
	cause error
}

func (e *RegistryError) Error() string {
	return "verify your schema registry configuration"
}

// Unwrap returns the registry failure.
func (e *RegistryError) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *RegistryError) Cause() error { return e.cause }

// Encoder encodes payloads against the schema of a Binding. The
// schema id is looked up on first use and reused afterwards. An
// Encoder is not safe for concurrent use.
type Encoder struct {
	registry Registry
	binding  Binding

	id       int
	resolved bool
}

// NewEncoder returns an Encoder using r for the schema of b.
func NewEncoder(r Registry, b Binding) *Encoder {
	return &Encoder{registry: r, binding: b}
}

// Binding returns the binding e was created with.
func (e *Encoder) Binding() Binding {
	return e.binding
}

// ResolveID returns the schema id, looking it up if it has not been
// resolved yet.
func (e *Encoder) ResolveID() (int, error) {
	if e.resolved {
		return e.id, nil
	}
	id, err := e.registry.LatestSchemaID(e.binding.EventName)
	if err != nil {
		return 0, &RegistryError{cause: err}
	}
	e.id, e.resolved = id, true
	return id, nil
}

// Encode encodes the JSON text value with the bound schema.
func (e *Encoder) Encode(value []byte) (message.Payload, error) {
	id, err := e.ResolveID()
	if err != nil {
		return message.Payload{}, err
	}
	b, err := e.registry.Encode(id, value)
	if err != nil {
		return message.Payload{}, &RegistryError{cause: err}
	}
	return message.SchemaEncoded(b), nil
}
