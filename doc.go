/*
Package sentryotel turns sentry-go error events into Open Telemetry spans.

Every event that sentry-go processes and that carries at least one
exception is mirrored as a zero-width root span: it starts and ends at
the event timestamp, has kind internal, and carries one "exception" span
event per exception in the sentry event. The sentry event itself is
never modified and is always handed back to sentry-go.

# Converter

NewConverter() wraps a Tracer. Its Convert() method is the whole
mapping: sentry contexts (app, response, cloud_resource, os, device)
are flattened into dotted OTEL style attributes such as app.version,
http.status_code, cloud.region, os.type, and device.battery_level.
Modules and tags are recorded as JSON strings in exception.modules and
exception.tags.

# Registrar

NewRegistrar() wraps a Converter in a sentry.EventProcessor and
registers it. The registration API is found by probing the SDK handle:
first the client bound to the hub (Client.AddEventProcessor), then the
process wide sentry.AddGlobalEventProcessor.

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	err := sentry.Init(sentry.ClientOptions{Dsn: dsn})
	...
	sentryotel.Initialize(ctx, tp, sentryotel.WithLogger(sentryotel.LogrusLogger(logrus.StandardLogger())))

Registration failures and conversion failures are reported to the
Logger and otherwise ignored: sentry error reporting keeps working as if
this package were not there.
*/
package sentryotel
