// Command kpub publishes a JSON array of records to Kafka as a single
// batch and prints the output records as JSON.
//
// Connection settings are read from the environment (KAFKA_BROKERS,
// KAFKA_SSL, KAFKA_AUTHENTICATION and friends). Execution parameters
// are read from a YAML file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shopify/sarama"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/heetch/kpub/common"
	"github.com/heetch/kpub/metrics"
	"github.com/heetch/kpub/producer"
	"github.com/heetch/kpub/publish"
)

// Env holds the settings read from the environment.
type Env struct {
	Kafka    producer.Credentials
	LogLevel string `env:"KPUB_LOG_LEVEL" envDefault:"info"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kpub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paramsPath := fs.String("params", "", "YAML file holding the execution parameters")
	inputPath := fs.String("input", "-", "JSON array of records to publish, - for stdin")
	envelope := fs.Bool("envelope", false, `input elements are {"json": ..., "params": ...} objects`)
	continueOnFail := fs.Bool("continue-on-fail", false, "report failures as an output record instead of failing")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stderr, "failed to parse environment variables: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	stdLog := zap.NewStdLog(logger)
	common.Logger = stdLog
	sarama.Logger = stdLog

	params, err := loadParams(*paramsPath)
	if err != nil {
		logger.Error("cannot load parameters", zap.Error(err))
		return 1
	}
	items, err := openItems(*inputPath, stdin, params, *envelope)
	if err != nil {
		logger.Error("cannot read input", zap.Error(err))
		return 1
	}

	registry := metrics.NewRegistry()
	pub := &publish.Publisher{
		ContinueOnFail: *continueOnFail,
		Metrics:        registry,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	records, err := pub.Run(ctx, cfg.Kafka, items)
	if err != nil {
		logger.Error("publish failed", zap.Error(err))
		code = 1
	} else if err := json.NewEncoder(stdout).Encode(records); err != nil {
		logger.Error("cannot write output", zap.Error(err))
		code = 1
	}

	if *metricsFile != "" {
		if err := registry.WriteToTextfile(*metricsFile); err != nil {
			logger.Warn("cannot write metrics", zap.String("path", *metricsFile), zap.Error(err))
		}
	}
	return code
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		log.Printf("invalid log level %q, defaulting to info: %v", level, err)
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	return config.Build(zap.AddCaller())
}
