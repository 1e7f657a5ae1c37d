package sentryoteltest

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Recorder is a TracerProvider that keeps every span in memory.
type Recorder struct {
	*tracetest.SpanRecorder
	Provider *sdktrace.TracerProvider
}

func NewRecorder() *Recorder {
	sr := tracetest.NewSpanRecorder()
	return &Recorder{
		SpanRecorder: sr,
		Provider:     sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)),
	}
}

func (r *Recorder) Tracer() oteltrace.Tracer {
	return r.Provider.Tracer("sentryoteltest")
}

func (r *Recorder) Shutdown() error {
	return r.Provider.Shutdown(context.Background())
}

// Attributes indexes kvs by key. Later values win.
func Attributes(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

// KeysWithPrefix returns the sorted keys in kvs that start with prefix.
func KeysWithPrefix(kvs []attribute.KeyValue, prefix string) []string {
	var keys []string
	for _, kv := range kvs {
		if strings.HasPrefix(string(kv.Key), prefix) {
			keys = append(keys, string(kv.Key))
		}
	}
	sort.Strings(keys)
	return keys
}
