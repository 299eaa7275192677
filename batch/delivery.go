package batch

import "time"

// DefaultTimeout is the time a batch send may take when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Compression is the compression applied to a batch.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGZIP
)

func (c Compression) String() string {
	if c == CompressionGZIP {
		return "gzip"
	}
	return "none"
}

// AckLevel is how many replica acknowledgments the broker must collect
// before reporting success.
type AckLevel int

const (
	// AckNone does not wait for any acknowledgment.
	AckNone AckLevel = 0
	// AckAll waits for all in-sync replicas.
	AckAll AckLevel = 1
)

// Delivery holds the settings a batch is sent with.
type Delivery struct {
	Timeout     time.Duration
	Compression Compression
	Acks        AckLevel
}

// NewDelivery converts the boolean options and the millisecond timeout
// used by callers into Delivery. A timeout of zero or less selects
// DefaultTimeout.
func NewDelivery(acks, compression bool, timeoutMs int) Delivery {
	d := Delivery{
		Timeout:     DefaultTimeout,
		Compression: CompressionNone,
		Acks:        AckNone,
	}
	if timeoutMs > 0 {
		d.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if compression {
		d.Compression = CompressionGZIP
	}
	if acks {
		d.Acks = AckAll
	}
	return d
}
