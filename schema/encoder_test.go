package schema_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/heetch/kpub/message"
	"github.com/heetch/kpub/schema"
)

// fakeRegistry counts calls and echoes values framed with the id.
type fakeRegistry struct {
	id        int
	lookupErr error
	encodeErr error

	lookups  []string
	encodes  int
	encodeID []int
}

func (r *fakeRegistry) LatestSchemaID(subject string) (int, error) {
	r.lookups = append(r.lookups, subject)
	if r.lookupErr != nil {
		return 0, r.lookupErr
	}
	return r.id, nil
}

func (r *fakeRegistry) Encode(id int, value []byte) ([]byte, error) {
	r.encodes++
	r.encodeID = append(r.encodeID, id)
	if r.encodeErr != nil {
		return nil, r.encodeErr
	}
	return append([]byte{byte(id)}, value...), nil
}

func TestEncoderResolvesOnce(t *testing.T) {
	reg := &fakeRegistry{id: 7}
	enc := schema.NewEncoder(reg, schema.Binding{URL: "http://registry", EventName: "com.example.Event"})

	for _, v := range []string{`{"a":1}`, `{"a":2}`, `{"a":3}`} {
		p, err := enc.Encode([]byte(v))
		require.NoError(t, err)
		require.Equal(t, message.KindSchemaEncoded, p.Kind())
		b, err := p.Encode()
		require.NoError(t, err)
		require.Equal(t, append([]byte{7}, v...), b)
	}

	require.Equal(t, []string{"com.example.Event"}, reg.lookups)
	require.Equal(t, 3, reg.encodes)
	require.Equal(t, []int{7, 7, 7}, reg.encodeID)

	id, err := enc.ResolveID()
	require.NoError(t, err)
	require.Equal(t, 7, id)
	require.Len(t, reg.lookups, 1)
}

func TestEncoderLookupError(t *testing.T) {
	cause := errors.New("subject not found")
	reg := &fakeRegistry{lookupErr: cause}
	enc := schema.NewEncoder(reg, schema.Binding{EventName: "missing"})

	_, err := enc.Encode([]byte(`{}`))
	require.EqualError(t, err, "verify your schema registry configuration")

	var rerr *schema.RegistryError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, cause, errors.Cause(err))
	require.True(t, errors.Is(err, cause))
	require.Equal(t, 0, reg.encodes)

	// A failed lookup is not cached.
	_, err = enc.ResolveID()
	require.Error(t, err)
	require.Len(t, reg.lookups, 2)
}

func TestEncoderEncodeError(t *testing.T) {
	cause := errors.New("value does not match schema")
	reg := &fakeRegistry{id: 1, encodeErr: cause}
	enc := schema.NewEncoder(reg, schema.Binding{EventName: "e"})

	_, err := enc.Encode([]byte(`{}`))
	require.EqualError(t, err, "verify your schema registry configuration")
	require.True(t, errors.Is(err, cause))
}

func TestEncoderBinding(t *testing.T) {
	b := schema.Binding{URL: "http://registry", EventName: "e"}
	require.Equal(t, b, schema.NewEncoder(&fakeRegistry{}, b).Binding())
}
