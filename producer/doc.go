// Package producer connects to Kafka and sends batches.
//
// ResolveConfig validates the raw credentials of a Kafka connection
// and returns a Config. A Session owns the connection for the
// duration of one execution:
//
//	cfg, err := producer.ResolveConfig(creds)
//	...
//	s := producer.NewSession(nil)
//	if err := s.Open(cfg, req.Delivery); err != nil {
//		...
//	}
//	defer s.Close()
//	outcomes, err := s.Send(ctx, req)
//
// Send issues a single batched call to Sarama's SyncProducer and is
// bounded by the timeout of the batch. Close must be called on every
// path, including after a failed Send.
package producer
