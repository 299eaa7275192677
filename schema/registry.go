package schema

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/riferrei/srclient"

	"github.com/heetch/kpub/codec"
)

const magicByte = 0

// Registry is the subset of a schema registry client used to bind
// payloads to a schema.
type Registry interface {
	// LatestSchemaID returns the id of the latest schema registered
	// under subject.
	LatestSchemaID(subject string) (int, error)
	// Encode encodes the JSON text value with the schema identified
	// by id and returns it in the registry's wire format.
	Encode(id int, value []byte) ([]byte, error)
}

// NewRegistry returns a Registry talking to the schema registry at url.
func NewRegistry(url string) Registry {
	return &registryClient{client: srclient.CreateSchemaRegistryClient(url)}
}

type registryClient struct {
	client *srclient.SchemaRegistryClient
}

func (r *registryClient) LatestSchemaID(subject string) (int, error) {
	s, err := r.client.GetLatestSchema(subject)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot get latest schema for %q", subject)
	}
	return s.ID(), nil
}

func (r *registryClient) Encode(id int, value []byte) ([]byte, error) {
	s, err := r.client.GetSchema(id)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get schema %d", id)
	}
	compiled := s.Codec()
	if compiled == nil {
		return nil, errors.Errorf("schema %d has no Avro codec", id)
	}
	body, err := codec.AvroFrom(compiled).Encode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %d", id)
	}
	return frame(id, body), nil
}

// frame prefixes body with the wire format header for id.
func frame(id int, body []byte) []byte {
	b := make([]byte, 5, 5+len(body))
	b[0] = magicByte
	binary.BigEndian.PutUint32(b[1:5], uint32(id))
	return append(b, body...)
}

// SplitFrame returns the schema id and body of a wire format value.
func SplitFrame(b []byte) (int, []byte, error) {
	if len(b) < 5 || b[0] != magicByte {
		return 0, nil, errors.New("value is not in schema registry wire format")
	}
	return int(binary.BigEndian.Uint32(b[1:5])), b[5:], nil
}
