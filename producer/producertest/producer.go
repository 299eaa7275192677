// Package producertest provides an in-memory sarama.SyncProducer for
// tests of code built on package producer.
package producertest

import (
	"sync"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"github.com/heetch/kpub/producer"
)

// ErrClosed is returned by a blocked SendMessages call when the
// producer is closed.
var ErrClosed = errors.New("producer closed")

// Producer records the batches it is asked to send. Only SendMessages
// and Close are implemented; calling any other sarama.SyncProducer
// method panics.
type Producer struct {
	sarama.SyncProducer

	// Err, when set, is returned by SendMessages.
	Err error
	// Block makes SendMessages wait until Close is called.
	Block bool

	mu      sync.Mutex
	batches [][]*sarama.ProducerMessage
	closed  int
	config  *sarama.Config
	addrs   []string
	release chan struct{}
	offset  int64
}

// New returns a Producer that acknowledges everything.
func New() *Producer {
	return &Producer{release: make(chan struct{})}
}

// Dialer returns a producer.Dialer handing out p, or failing with
// dialErr when it is not nil.
func (p *Producer) Dialer(dialErr error) producer.Dialer {
	return func(addrs []string, config *sarama.Config) (sarama.SyncProducer, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.addrs, p.config = addrs, config
		if dialErr != nil {
			return nil, dialErr
		}
		return p, nil
	}
}

// SendMessages implements sarama.SyncProducer.
func (p *Producer) SendMessages(msgs []*sarama.ProducerMessage) error {
	p.mu.Lock()
	p.batches = append(p.batches, msgs)
	block, err := p.Block, p.Err
	p.mu.Unlock()

	if block {
		<-p.release
		return ErrClosed
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.offset++
		m.Offset = p.offset
	}
	return nil
}

// Close implements sarama.SyncProducer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed == 0 {
		close(p.release)
	}
	p.closed++
	return nil
}

// Batches returns every batch sent so far.
func (p *Producer) Batches() [][]*sarama.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]*sarama.ProducerMessage(nil), p.batches...)
}

// Closed returns the number of times Close was called.
func (p *Producer) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Config returns the configuration the last dial was made with.
func (p *Producer) Config() *sarama.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Addrs returns the addresses the last dial was made with.
func (p *Producer) Addrs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addrs
}
