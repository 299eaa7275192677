package producer

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"github.com/heetch/kpub/batch"
	"github.com/heetch/kpub/common"
)

// Dialer connects to the given brokers and returns a SyncProducer.
// sarama.NewSyncProducer is a Dialer.
type Dialer func(addrs []string, config *sarama.Config) (sarama.SyncProducer, error)

// ConnectionError is returned by Session.Open when the brokers cannot
// be reached or refuse the connection.
type ConnectionError struct {
	cause error
}

func (e *ConnectionError) Error() string {
	return "failed to connect to brokers: " + e.cause.Error()
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *ConnectionError) Cause() error { return e.cause }

// SendError is returned by Session.Send when the batch could not be
// delivered: timeout, broker rejection or transport failure. The
// whole batch fails as a unit.
type SendError struct {
	cause error
}

func (e *SendError) Error() string {
	return "failed to send batch: " + e.cause.Error()
}

// Unwrap returns the underlying error.
func (e *SendError) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *SendError) Cause() error { return e.cause }

// Outcome is the broker's report for a single delivered message.
type Outcome struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Session owns a broker connection. A Session goes from closed to
// open with Open and back to closed with Close; it cannot be reopened.
// It is not safe for concurrent use.
type Session struct {
	// Logger overrides common.Logger when set.
	Logger common.StdLogger

	dial     Dialer
	producer sarama.SyncProducer
	delivery batch.Delivery
	opened   bool
}

// NewSession returns a closed Session connecting with dial.
// When dial is nil, sarama.NewSyncProducer is used.
func NewSession(dial Dialer) *Session {
	if dial == nil {
		dial = sarama.NewSyncProducer
	}
	return &Session{dial: dial}
}

// NewSessionFrom returns an open Session using the given SyncProducer
// for batches sent with d. The Session takes ownership of p.
func NewSessionFrom(p sarama.SyncProducer, d batch.Delivery) *Session {
	return &Session{producer: p, delivery: d, opened: true}
}

// Open connects to the brokers of cfg. Batches sent through the
// session must use the delivery settings d.
func (s *Session) Open(cfg Config, d batch.Delivery) error {
	if s.opened {
		return &ConnectionError{cause: errors.New("session already opened")}
	}
	p, err := s.dial(cfg.Brokers, cfg.Sarama(d))
	if err != nil {
		return &ConnectionError{cause: err}
	}
	s.producer, s.delivery, s.opened = p, d, true
	common.Or(s.Logger).Printf("connected to brokers %v", cfg.Brokers)
	return nil
}

// Send sends every message of req in a single call. It blocks until
// the broker acknowledges the batch, the batch timeout elapses or ctx
// is done.
//
// At batch.AckNone the broker reports nothing and no outcome is
// returned. Otherwise there is one outcome per message, topic by
// topic, in input order.
func (s *Session) Send(ctx context.Context, req *batch.Request) ([]Outcome, error) {
	if s.producer == nil {
		return nil, &SendError{cause: errors.New("session is not open")}
	}
	if req.Delivery != s.delivery {
		return nil, &SendError{cause: errors.Errorf("batch delivery settings %+v differ from the session's %+v", req.Delivery, s.delivery)}
	}

	now := time.Now()
	msgs := make([]*sarama.ProducerMessage, 0, req.Len())
	for _, m := range req.Messages() {
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic:     m.Topic,
			Value:     m.Payload,
			Headers:   m.Headers.Records(),
			Timestamp: now,
		})
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = batch.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// SendMessages takes no context; the call is abandoned on timeout
	// and returns once the producer is closed.
	done := make(chan error, 1)
	go func() {
		done <- s.producer.SendMessages(msgs)
	}()
	select {
	case err := <-done:
		if err != nil {
			return nil, &SendError{cause: err}
		}
	case <-ctx.Done():
		return nil, &SendError{cause: errors.Wrapf(ctx.Err(), "%d messages not acknowledged within %v", len(msgs), timeout)}
	}
	common.Or(s.Logger).Printf("sent %d messages to %d topics", len(msgs), len(req.Topics))

	if req.Acks == batch.AckNone {
		return nil, nil
	}
	outcomes := make([]Outcome, len(msgs))
	for i, m := range msgs {
		outcomes[i] = Outcome{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Timestamp: m.Timestamp,
		}
	}
	return outcomes, nil
}

// Close releases the connection. It is safe to call Close more than
// once and on a session that was never opened.
func (s *Session) Close() error {
	if s.producer == nil {
		return nil
	}
	p := s.producer
	s.producer = nil
	return errors.Wrap(p.Close(), "failed to close producer")
}
