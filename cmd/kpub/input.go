package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/heetch/kpub/message"
	"github.com/heetch/kpub/publish"
)

// loadParams reads the execution parameters from the YAML file at
// path. Fields missing from the file keep their default value. An
// empty path yields the defaults.
func loadParams(path string) (publish.Params, error) {
	params := publish.DefaultParams()
	if path == "" {
		return params, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return params, errors.Wrap(err, "cannot read parameters")
	}
	if err := yaml.Unmarshal(b, &params); err != nil {
		return params, errors.Wrapf(err, "cannot decode parameters from %s", path)
	}
	return params, nil
}

func openItems(path string, stdin io.Reader, params publish.Params, envelope bool) ([]publish.Item, error) {
	if path == "-" || path == "" {
		return readItems(stdin, params, envelope)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open input")
	}
	defer f.Close()
	return readItems(f, params, envelope)
}

type envelopeItem struct {
	JSON   json.RawMessage `json:"json"`
	Params json.RawMessage `json:"params"`
}

// readItems decodes a JSON array of records. Every record gets a copy
// of params. In envelope mode each element carries its record under
// "json" and may override params under "params".
func readItems(r io.Reader, params publish.Params, envelope bool) ([]publish.Item, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "input must be a JSON array")
	}
	items := make([]publish.Item, 0, len(raw))
	for i, elem := range raw {
		it := publish.Item{JSON: elem, Params: params}
		if envelope {
			var e envelopeItem
			if err := json.Unmarshal(elem, &e); err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			it.JSON = e.JSON
			if len(e.Params) > 0 {
				// Decoding reuses the slice, which is shared with params.
				it.Params.HeadersUI = append([]message.HeaderPair(nil), params.HeadersUI...)
				if err := json.Unmarshal(e.Params, &it.Params); err != nil {
					return nil, errors.Wrapf(err, "item %d: invalid params", i)
				}
			}
		}
		items = append(items, it)
	}
	return items, nil
}
