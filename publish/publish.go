// Package publish runs one execution of the pipeline: it resolves
// the connection configuration, assembles every input item into a
// single batch, sends it and maps the broker's report to output
// records.
package publish

import (
	"context"
	"time"

	"github.com/rogpeppe/fastuuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/heetch/kpub/batch"
	"github.com/heetch/kpub/common"
	"github.com/heetch/kpub/producer"
	"github.com/heetch/kpub/result"
	"github.com/heetch/kpub/schema"
)

var uuids = fastuuid.MustNewGenerator()

const tracerName = "github.com/heetch/kpub/publish"

// MetricsReporter receives a report for every batch sent.
type MetricsReporter interface {
	ReportBatch(messages int, d time.Duration, err error)
}

// Publisher runs executions. The zero value connects with
// sarama.NewSyncProducer and the srclient schema registry client.
// A Publisher holds no connection; every call to Run builds its own.
type Publisher struct {
	// Dial connects to the brokers. Defaults to sarama.NewSyncProducer.
	Dial producer.Dialer

	// NewRegistry returns the schema registry client for a URL.
	// Defaults to schema.NewRegistry.
	NewRegistry func(url string) schema.Registry

	// ContinueOnFail turns a failed execution into a single output
	// record carrying the error message.
	ContinueOnFail bool

	// Logger overrides common.Logger when set.
	Logger common.StdLogger

	// Metrics, when set, is told about every batch sent.
	Metrics MetricsReporter

	// Tracer defaults to the global OpenTelemetry tracer provider.
	Tracer trace.Tracer
}

// Run publishes items to Kafka using creds and returns the output
// records.
//
// Any error aborts the whole execution and nothing is returned for
// the batch. When ContinueOnFail is set, the error is instead
// returned as the only output record.
func (p *Publisher) Run(ctx context.Context, creds producer.Credentials, items []Item) ([]result.Record, error) {
	id := uuids.Hex128()
	records, err := p.run(ctx, id, creds, items)
	if err != nil {
		common.Or(p.Logger).Printf("execution %s failed: %v", id, err)
		if p.ContinueOnFail {
			return []result.Record{result.Failure(err)}, nil
		}
		return nil, err
	}
	return records, nil
}

func (p *Publisher) run(ctx context.Context, id string, creds producer.Credentials, items []Item) (_ []result.Record, err error) {
	logger := common.Or(p.Logger)
	ctx, span := p.tracer().Start(ctx, "kpub.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("kpub.execution.id", id),
			attribute.Int("kpub.items", len(items)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	cfg, err := producer.ResolveConfig(creds)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		logger.Printf("execution %s: no input, nothing to send", id)
		return nil, nil
	}

	// Batch level settings come from the first item.
	first := items[0].Params
	delivery := first.Delivery()
	span.SetAttributes(
		attribute.Int("kpub.acks", int(delivery.Acks)),
		attribute.String("kpub.compression", delivery.Compression.String()),
	)
	var enc batch.Encoder
	if first.UseSchemaRegistry {
		enc = schema.NewEncoder(p.newRegistry(first.SchemaRegistryURL), first.Binding())
	}

	session := producer.NewSession(p.Dial)
	session.Logger = p.Logger
	if err := session.Open(cfg, delivery); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Printf("execution %s: %v", id, cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	asm := batch.NewAssembler(first.Mode(), enc)
	for _, it := range items {
		if err := asm.Add(it.record()); err != nil {
			return nil, err
		}
	}
	req := asm.Request(delivery)
	span.SetAttributes(attribute.Int("kpub.batch.messages", req.Len()))

	start := time.Now()
	outcomes, err := session.Send(ctx, req)
	if p.Metrics != nil {
		p.Metrics.ReportBatch(req.Len(), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	logger.Printf("execution %s: sent %d messages, %d outcomes", id, req.Len(), len(outcomes))
	return result.Map(outcomes), nil
}

func (p *Publisher) tracer() trace.Tracer {
	if p.Tracer != nil {
		return p.Tracer
	}
	return otel.Tracer(tracerName)
}

func (p *Publisher) newRegistry(url string) schema.Registry {
	if p.NewRegistry != nil {
		return p.NewRegistry(url)
	}
	return schema.NewRegistry(url)
}
