package publish

import (
	"encoding/json"

	"github.com/heetch/kpub/batch"
	"github.com/heetch/kpub/message"
	"github.com/heetch/kpub/schema"
)

// Options holds the delivery options of an execution.
type Options struct {
	// Acks requires all in-sync replicas to acknowledge the batch.
	Acks bool `yaml:"acks" json:"acks"`
	// Compression gzips the batch.
	Compression bool `yaml:"compression" json:"compression"`
	// Timeout of the send, in milliseconds.
	Timeout int `yaml:"timeout" json:"timeout"`
}

// Params holds the parameters of one input item.
//
// Topic, Message and the header fields are read for every item. The
// payload mode, the schema registry binding and Options are read
// from the first item only and apply to the whole batch.
type Params struct {
	Topic                string               `yaml:"topic" json:"topic"`
	SendInputData        bool                 `yaml:"sendInputData" json:"sendInputData"`
	Message              string               `yaml:"message" json:"message"`
	JSONParameters       bool                 `yaml:"jsonParameters" json:"jsonParameters"`
	HeadersUI            []message.HeaderPair `yaml:"headersUi" json:"headersUi"`
	HeaderParametersJSON string               `yaml:"headerParametersJson" json:"headerParametersJson"`
	UseSchemaRegistry    bool                 `yaml:"useSchemaRegistry" json:"useSchemaRegistry"`
	SchemaRegistryURL    string               `yaml:"schemaRegistryUrl" json:"schemaRegistryUrl"`
	EventName            string               `yaml:"eventName" json:"eventName"`
	Options              Options              `yaml:"options" json:"options"`
}

// DefaultParams returns the parameters used when none are given:
// input data is sent as is and the send times out after 30 seconds.
func DefaultParams() Params {
	return Params{
		SendInputData: true,
		Options: Options{
			Timeout: int(batch.DefaultTimeout.Milliseconds()),
		},
	}
}

// Mode returns the payload mode selected by p.
func (p Params) Mode() batch.Mode {
	if p.SendInputData {
		return batch.ModeInputData
	}
	return batch.ModeMessage
}

// Delivery returns the delivery settings selected by p.
func (p Params) Delivery() batch.Delivery {
	return batch.NewDelivery(p.Options.Acks, p.Options.Compression, p.Options.Timeout)
}

// Binding returns the schema binding selected by p.
func (p Params) Binding() schema.Binding {
	return schema.Binding{URL: p.SchemaRegistryURL, EventName: p.EventName}
}

// Headers returns the header description of p.
func (p Params) Headers() message.HeaderSpec {
	return message.HeaderSpec{
		Raw:   p.JSONParameters,
		Pairs: p.HeadersUI,
		JSON:  p.HeaderParametersJSON,
	}
}

// Item is one input record along with its parameters.
type Item struct {
	JSON   json.RawMessage
	Params Params
}

func (it Item) record() batch.Record {
	return batch.Record{
		Data:    it.JSON,
		Topic:   it.Params.Topic,
		Message: it.Params.Message,
		Headers: it.Params.Headers(),
	}
}
