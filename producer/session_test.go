package producer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/heetch/kpub/batch"
	"github.com/heetch/kpub/message"
	"github.com/heetch/kpub/producer"
	"github.com/heetch/kpub/producer/producertest"
)

func newRequest(t *testing.T, d batch.Delivery, topicAndValues ...string) *batch.Request {
	a := batch.NewAssembler(batch.ModeMessage, nil)
	for i := 0; i < len(topicAndValues); i += 2 {
		err := a.Add(batch.Record{
			Topic:   topicAndValues[i],
			Message: topicAndValues[i+1],
			Headers: message.HeaderSpec{Pairs: []message.HeaderPair{{Key: "n", Value: fmt.Sprint(i / 2)}}},
		})
		require.NoError(t, err)
	}
	return a.Request(d)
}

var testConfig = producer.Config{ClientID: "test", Brokers: []string{"k1:9092", "k2:9092"}}

func TestSessionSend(t *testing.T) {
	d := batch.NewDelivery(true, false, 0)
	p := producertest.New()
	s := producer.NewSession(p.Dialer(nil))

	require.NoError(t, s.Open(testConfig, d))
	require.Equal(t, []string{"k1:9092", "k2:9092"}, p.Addrs())
	require.Equal(t, sarama.WaitForAll, p.Config().Producer.RequiredAcks)

	outcomes, err := s.Send(context.Background(), newRequest(t, d, "a", "1", "b", "2", "a", "3"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	batches := p.Batches()
	require.Len(t, batches, 1)
	var got []string
	for _, m := range batches[0] {
		v, err := m.Value.Encode()
		require.NoError(t, err)
		got = append(got, m.Topic+":"+string(v)+":"+string(m.Headers[0].Value))
		require.False(t, m.Timestamp.IsZero())
		// Unkeyed, so partitions are picked by Sarama's default partitioner.
		require.Nil(t, m.Key)
	}
	require.Equal(t, []string{"a:1:0", "a:3:2", "b:2:1"}, got)

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		require.Equal(t, batches[0][i].Topic, o.Topic)
		require.Equal(t, int64(i+1), o.Offset)
	}
	require.Equal(t, 1, p.Closed())
}

// No outcome is reported when the broker does not acknowledge.
func TestSessionSendNoAcks(t *testing.T) {
	d := batch.NewDelivery(false, true, 0)
	p := producertest.New()
	s := producer.NewSession(p.Dialer(nil))
	require.NoError(t, s.Open(testConfig, d))
	defer s.Close()

	require.Equal(t, sarama.NoResponse, p.Config().Producer.RequiredAcks)
	require.Equal(t, sarama.CompressionGZIP, p.Config().Producer.Compression)

	outcomes, err := s.Send(context.Background(), newRequest(t, d, "a", "1", "a", "2"))
	require.NoError(t, err)
	require.Empty(t, outcomes)
	require.Len(t, p.Batches(), 1)
	require.Len(t, p.Batches()[0], 2)
}

func TestSessionSendWithMock(t *testing.T) {
	d := batch.NewDelivery(true, false, 0)
	msp := mocks.NewSyncProducer(t, nil)
	s := producer.NewSessionFrom(msp, d)

	msp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "message" {
			return fmt.Errorf("expected: message but got: %s", val)
		}
		return nil
	})
	outcomes, err := s.Send(context.Background(), newRequest(t, d, "topic", "message"))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, "topic", outcomes[0].Topic)

	msp.ExpectSendMessageAndFail(fmt.Errorf("cannot produce message"))
	_, err = s.Send(context.Background(), newRequest(t, d, "topic", "message"))
	require.Error(t, err)
	require.Regexp(t, "^failed to send batch: ", err.Error())
	var serr *producer.SendError
	require.True(t, errors.As(err, &serr))

	require.NoError(t, s.Close())
}

func TestSessionSendTimeout(t *testing.T) {
	d := batch.Delivery{Timeout: 20 * time.Millisecond, Acks: batch.AckAll}
	p := producertest.New()
	p.Block = true
	s := producer.NewSession(p.Dialer(nil))
	require.NoError(t, s.Open(testConfig, d))

	t0 := time.Now()
	_, err := s.Send(context.Background(), newRequest(t, d, "a", "1"))
	require.Less(t, time.Since(t0), 5*time.Second)

	var serr *producer.SendError
	require.True(t, errors.As(err, &serr))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Regexp(t, "^failed to send batch: 1 messages not acknowledged within 20ms", err.Error())

	require.NoError(t, s.Close())
	require.Equal(t, 1, p.Closed())
}

func TestSessionOpenError(t *testing.T) {
	p := producertest.New()
	s := producer.NewSession(p.Dialer(sarama.ErrOutOfBrokers))

	err := s.Open(testConfig, batch.Delivery{})
	require.EqualError(t, err, "failed to connect to brokers: "+sarama.ErrOutOfBrokers.Error())
	var cerr *producer.ConnectionError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, sarama.ErrOutOfBrokers, errors.Cause(err))

	// Nothing to release.
	require.NoError(t, s.Close())
	require.Equal(t, 0, p.Closed())
}

func TestSessionLifecycle(t *testing.T) {
	d := batch.Delivery{Timeout: time.Second}
	p := producertest.New()
	s := producer.NewSession(p.Dialer(nil))

	_, err := s.Send(context.Background(), newRequest(t, d, "a", "1"))
	require.EqualError(t, err, "failed to send batch: session is not open")

	require.NoError(t, s.Open(testConfig, d))
	require.EqualError(t, s.Open(testConfig, d), "failed to connect to brokers: session already opened")

	_, err = s.Send(context.Background(), newRequest(t, batch.Delivery{Timeout: 2 * time.Second}, "a", "1"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "differ from the session's")

	outcomes, err := s.Send(context.Background(), newRequest(t, d))
	require.NoError(t, err)
	require.Nil(t, outcomes)
	require.Empty(t, p.Batches())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, p.Closed())

	_, err = s.Send(context.Background(), newRequest(t, d, "a", "1"))
	require.EqualError(t, err, "failed to send batch: session is not open")
}

func TestSessionSendCancelled(t *testing.T) {
	d := batch.Delivery{Timeout: time.Minute}
	p := producertest.New()
	p.Block = true
	s := producer.NewSessionFrom(p, d)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Send(ctx, newRequest(t, d, "a", "1"))
	require.True(t, errors.Is(err, context.Canceled))
}
