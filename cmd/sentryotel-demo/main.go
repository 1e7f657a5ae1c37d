// Command sentryotel-demo captures a few errors with sentry-go and shows
// the spans sentryotel derives from them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"google.golang.org/grpc"

	"github.com/xoplog/sentryotel"
	"github.com/xoplog/sentryotel/internal/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, config.Usage())
		os.Exit(1)
	}
}

func newExporter(ctx context.Context, c config.Config) (sdktrace.SpanExporter, error) {
	switch c.Exporter {
	case config.ExporterOTLP:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(c.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithBlock()),
		)
	default:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
}

func run(ctx context.Context) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	log := logrus.New()
	if c.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exporter, err := newExporter(dialCtx, c)
	if err != nil {
		return errors.Wrapf(err, "create %s exporter", c.Exporter)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceNameKey.String(c.ServiceName))),
	)
	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown tracer provider")
		}
	}()

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         c.SentryDSN,
		Environment: c.Environment,
	})
	if err != nil {
		return errors.Wrap(err, "sentry init")
	}
	defer sentry.Flush(2 * time.Second)

	registrar := sentryotel.Initialize(ctx, tracerProvider,
		sentryotel.WithLogger(sentryotel.LogrusLogger(log)))
	log.WithField("registration", registrar.Kind().String()).Info("sentryotel initialized")

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetContext("app", map[string]interface{}{
			"app_name":    c.ServiceName,
			"app_version": "demo",
		})
	})
	sentry.CaptureException(errors.New("demo failure"))
	sentry.CaptureException(errors.Wrap(errors.New("connection refused"), "fetch user"))
	sentry.CaptureMessage("messages do not become spans")
	return nil
}
