package sentryotel

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// undefinedStacktrace is recorded for exceptions without a stacktrace.
const undefinedStacktrace = "undefined"

// Converter turns sentry events that carry exceptions into zero-width
// OTEL spans.
type Converter struct {
	tracer oteltrace.Tracer
	logger Logger
	now    func() time.Time
}

func NewConverter(tracer oteltrace.Tracer, opts ...Option) *Converter {
	c := newConfig(opts)
	return &Converter{
		tracer: tracer,
		logger: c.logger,
		now:    time.Now,
	}
}

// IsException is true when event has at least one exception record.
func (c *Converter) IsException(event *sentry.Event) bool {
	return event != nil && len(event.Exception) > 0
}

// SpanName is the type of the first exception and the transaction joined
// by a space. The space is kept when there is no transaction.
func (c *Converter) SpanName(event *sentry.Event) string {
	var first, transaction string
	if c.IsException(event) {
		first = event.Exception[0].Type
	}
	if event != nil {
		transaction = event.Transaction
	}
	return strings.Join([]string{first, transaction}, " ")
}

// Convert synthesizes a span for event if it is an exception. It reports
// whether a span was emitted. Panics are returned as errors.
func (c *Converter) Convert(event *sentry.Event) (emitted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			emitted = false
			err = errors.Errorf("panic: %v", r)
		}
	}()
	if !c.IsException(event) {
		return false, nil
	}
	if err := c.Synthesize(event); err != nil {
		return false, err
	}
	return true, nil
}

// Synthesize emits one root span for event. The span starts and ends at
// the event timestamp and carries one exception event per exception
// record, in order. Nothing is emitted if the attributes cannot be built.
func (c *Converter) Synthesize(event *sentry.Event) error {
	if !c.IsException(event) {
		return errors.Errorf("event has no exceptions")
	}
	attributes, err := c.Attributes(event)
	if err != nil {
		return err
	}
	exceptions := make([][]attribute.KeyValue, len(event.Exception))
	for i, exception := range event.Exception {
		exceptions[i], err = exceptionAttributes(exception)
		if err != nil {
			return errors.Wrapf(err, "exception %d", i)
		}
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	// TODO: attach to the active span once sentry stops replacing it
	name := c.SpanName(event)
	_, span := c.tracer.Start(context.Background(), name,
		oteltrace.WithNewRoot(),
		oteltrace.WithTimestamp(ts),
		oteltrace.WithSpanKind(oteltrace.SpanKindInternal),
		oteltrace.WithAttributes(attributes...),
	)
	for _, kvs := range exceptions {
		span.AddEvent(semconv.ExceptionEventName,
			oteltrace.WithTimestamp(ts),
			oteltrace.WithAttributes(kvs...))
	}
	span.End(oteltrace.WithTimestamp(ts))
	debugf(c.logger, "Recorded span %q with %d exceptions", name, len(exceptions))
	return nil
}

func exceptionAttributes(exception sentry.Exception) ([]attribute.KeyValue, error) {
	stacktrace := undefinedStacktrace
	if exception.Stacktrace != nil {
		enc, err := json.Marshal(exception.Stacktrace)
		if err != nil {
			return nil, errors.Wrap(err, "encode stacktrace")
		}
		stacktrace = string(enc)
	}
	return []attribute.KeyValue{
		semconv.ExceptionMessageKey.String(exception.Value),
		semconv.ExceptionStacktraceKey.String(stacktrace),
		semconv.ExceptionTypeKey.String(exception.Type),
	}, nil
}
