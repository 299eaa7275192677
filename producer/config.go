package producer

import (
	"crypto/tls"
	"strings"

	"github.com/Shopify/sarama"

	"github.com/heetch/kpub/batch"
)

// SASL mechanisms accepted in Credentials.SASLMechanism.
const (
	MechanismPlain       = "plain"
	MechanismSCRAMSHA256 = "scram-sha-256"
	MechanismSCRAMSHA512 = "scram-sha-512"
)

// Credentials holds the raw connection fields as they are stored.
type Credentials struct {
	// Brokers is a comma separated list of host:port addresses.
	Brokers        string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	ClientID       string `env:"KAFKA_CLIENT_ID"`
	SSL            bool   `env:"KAFKA_SSL"`
	Authentication bool   `env:"KAFKA_AUTHENTICATION"`
	Username       string `env:"KAFKA_USERNAME"`
	Password       string `env:"KAFKA_PASSWORD"`
	SASLMechanism  string `env:"KAFKA_SASL_MECHANISM" envDefault:"plain"`
}

// SASL holds the authentication settings of a Config.
type SASL struct {
	User      string
	Password  string
	Mechanism string
}

// Config is a validated connection configuration. It is immutable
// once returned by ResolveConfig.
type Config struct {
	ClientID string
	Brokers  []string
	TLS      bool
	// SASL is nil when authentication is disabled.
	SASL *SASL
}

// ConfigurationError is returned by ResolveConfig when the credentials
// cannot be used.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// ResolveConfig validates creds and returns the Config they describe.
// It does no I/O.
func ResolveConfig(creds Credentials) (Config, error) {
	cfg := Config{
		ClientID: strings.TrimSpace(creds.ClientID),
		Brokers:  splitBrokers(creds.Brokers),
		TLS:      creds.SSL,
	}
	if len(cfg.Brokers) == 0 {
		return Config{}, &ConfigurationError{"at least one broker address is required"}
	}
	if !creds.Authentication {
		return cfg, nil
	}
	if creds.Username == "" || creds.Password == "" {
		return Config{}, &ConfigurationError{"username and password are required for authentication"}
	}
	mechanism := strings.ToLower(strings.TrimSpace(creds.SASLMechanism))
	switch mechanism {
	case "":
		mechanism = MechanismPlain
	case MechanismPlain, MechanismSCRAMSHA256, MechanismSCRAMSHA512:
	default:
		return Config{}, &ConfigurationError{"unsupported SASL mechanism " + creds.SASLMechanism}
	}
	cfg.SASL = &SASL{
		User:      creds.Username,
		Password:  creds.Password,
		Mechanism: mechanism,
	}
	return cfg, nil
}

// splitBrokers splits a comma separated list, dropping blanks and
// duplicates while keeping the input order.
func splitBrokers(s string) []string {
	var addrs []string
	seen := make(map[string]bool)
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		addrs = append(addrs, a)
	}
	return addrs
}

// Sarama returns the Sarama configuration for c, sending batches with
// the settings of d.
func (c Config) Sarama(d batch.Delivery) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V1_0_0_0
	if c.ClientID != "" {
		config.ClientID = c.ClientID
	}
	config.Producer.Retry.Max = 3
	// required for the SyncProducer, see https://godoc.org/github.com/Shopify/sarama#SyncProducer
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	config.Producer.Timeout = d.Timeout
	if config.Producer.Timeout <= 0 {
		config.Producer.Timeout = batch.DefaultTimeout
	}
	switch d.Compression {
	case batch.CompressionGZIP:
		config.Producer.Compression = sarama.CompressionGZIP
	default:
		config.Producer.Compression = sarama.CompressionNone
	}
	switch d.Acks {
	case batch.AckAll:
		config.Producer.RequiredAcks = sarama.WaitForAll
	default:
		config.Producer.RequiredAcks = sarama.NoResponse
	}

	if c.TLS {
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if c.SASL != nil {
		config.Net.SASL.Enable = true
		config.Net.SASL.Handshake = true
		config.Net.SASL.User = c.SASL.User
		config.Net.SASL.Password = c.SASL.Password
		switch c.SASL.Mechanism {
		case MechanismSCRAMSHA256:
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &scramClient{HashGeneratorFcn: sha256Gen} }
		case MechanismSCRAMSHA512:
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &scramClient{HashGeneratorFcn: sha512Gen} }
		default:
			config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		}
	}
	return config
}
