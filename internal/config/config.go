// Package config reads the environment of the sentryotel demo.
package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Config struct {
	Debug        bool   `env:"SENTRYOTEL_DEBUG" env-default:"false" env-description:"Send sentryotel diagnostics to the log"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" env-default:"sentryotel-demo" env-description:"service.name resource attribute"`
	Exporter     string `env:"SENTRYOTEL_EXPORTER" env-default:"stdout" env-description:"Span exporter: stdout or otlp"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317" env-description:"OTLP/gRPC collector address"`
	SentryDSN    string `env:"SENTRY_DSN" env-description:"Sentry DSN, events are not delivered when empty"`
	Environment  string `env:"SENTRY_ENVIRONMENT" env-default:"development" env-description:"Sentry environment"`
}

func Load() (Config, error) {
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Exporter {
	case ExporterStdout, ExporterOTLP:
		return nil
	default:
		return errors.Errorf("unknown exporter %q, use %s or %s", c.Exporter, ExporterStdout, ExporterOTLP)
	}
}

// Usage describes the environment variables.
func Usage() string {
	var c Config
	text, err := cleanenv.GetDescription(&c, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
