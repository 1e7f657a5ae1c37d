package sentryotel

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/xoplog/sentryotel/internal/version"
)

// TracerName is the instrumentation name used by Initialize.
const TracerName = "github.com/xoplog/sentryotel"

// RegistrationKind records which registration API, if any, the hook was
// installed through.
type RegistrationKind int32

const (
	Unregistered RegistrationKind = iota
	ModernRegistration
	LegacyRegistration
)

func (k RegistrationKind) String() string {
	switch k {
	case Unregistered:
		return "unregistered"
	case ModernRegistration:
		return "modern"
	case LegacyRegistration:
		return "legacy"
	default:
		return "RegistrationKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// SDK is a handle on an installed error reporting SDK. Either
// registration function may be nil when the SDK does not offer it.
type SDK struct {
	Identifier string
	Version    string

	// AddEventProcessor is the current API: a processor bound to a client.
	AddEventProcessor func(sentry.EventProcessor)
	// AddGlobalEventProcessor is the legacy process-wide API.
	AddGlobalEventProcessor func(sentry.EventProcessor)
}

// Loader acquires the SDK handle.
type Loader func(ctx context.Context) (*SDK, error)

// LoadSentry returns a handle on sentry-go using the hub in ctx, or the
// current hub if ctx has none. The current API is only offered once a
// client is bound to that hub.
func LoadSentry(ctx context.Context) (*SDK, error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub == nil {
		return nil, errors.Errorf("no sentry hub")
	}
	sdk := &SDK{
		Identifier:              sentry.SDKIdentifier,
		Version:                 sentry.SDKVersion,
		AddGlobalEventProcessor: sentry.AddGlobalEventProcessor,
	}
	if client := hub.Client(); client != nil {
		sdk.AddEventProcessor = client.AddEventProcessor
	}
	return sdk, nil
}

// Probe looks for one registration entry point.
type Probe struct {
	Name   string
	Kind   RegistrationKind
	Lookup func(*SDK) func(sentry.EventProcessor)
}

// DefaultProbes prefers the client API and falls back to the global one.
var DefaultProbes = []Probe{
	{
		Name:   "Client.AddEventProcessor",
		Kind:   ModernRegistration,
		Lookup: func(sdk *SDK) func(sentry.EventProcessor) { return sdk.AddEventProcessor },
	},
	{
		Name:   "AddGlobalEventProcessor",
		Kind:   LegacyRegistration,
		Lookup: func(sdk *SDK) func(sentry.EventProcessor) { return sdk.AddGlobalEventProcessor },
	},
}

// Registrar installs a Converter as a sentry event processor. A
// Registrar makes a single registration attempt.
type Registrar struct {
	converter  *Converter
	logger     Logger
	loader     Loader
	probes     []Probe
	once       sync.Once
	kind       atomic.Int32
	sdkVersion atomic.Pointer[semver.Version]
}

func NewRegistrar(converter *Converter, opts ...Option) *Registrar {
	c := newConfig(opts)
	return &Registrar{
		converter: converter,
		logger:    c.logger,
		loader:    c.loader,
		probes:    c.probes,
	}
}

// Initialize builds a Converter from provider (the global provider when
// nil) and registers it.
func Initialize(ctx context.Context, provider oteltrace.TracerProvider, opts ...Option) *Registrar {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	r := NewRegistrar(NewConverter(provider.Tracer(TracerName), opts...), opts...)
	r.Initialize(ctx)
	return r
}

// Kind is the outcome of Initialize, Unregistered before it has run.
func (r *Registrar) Kind() RegistrationKind { return RegistrationKind(r.kind.Load()) }

// SDKVersion is the version the SDK announced, nil until known.
func (r *Registrar) SDKVersion() *semver.Version { return r.sdkVersion.Load() }

// Processor is the hook that gets registered. It always returns event
// as it was given.
func (r *Registrar) Processor() sentry.EventProcessor { return r.process }

func (r *Registrar) process(event *sentry.Event, _ *sentry.EventHint) (returned *sentry.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			returned = event
		}
	}()
	r.logger.Debug("Received event")
	if _, err := r.converter.Convert(event); err != nil {
		debugf(r.logger, "Error processing event: %v", err)
	}
	return event
}

// Initialize registers the Processor with the first probe that finds a
// registration function. Failures are logged, never returned; the
// Registrar then stays Unregistered. Only the first call does anything.
func (r *Registrar) Initialize(ctx context.Context) RegistrationKind {
	r.once.Do(func() {
		r.kind.Store(int32(r.initialize(ctx)))
	})
	return r.Kind()
}

func (r *Registrar) initialize(ctx context.Context) (kind RegistrationKind) {
	defer func() {
		if rec := recover(); rec != nil {
			debugf(r.logger, "Error initializing Sentry SDK: %v", rec)
			kind = Unregistered
		}
	}()
	sdk, err := r.loader(ctx)
	if err != nil {
		debugf(r.logger, "Error initializing Sentry SDK: %v", err)
		return Unregistered
	}
	if sdk == nil {
		r.logger.Debug("Sentry SDK not found")
		return Unregistered
	}

	identifier, sver, err := version.SplitWithError(sdk.Version)
	if err != nil {
		debugf(r.logger, "Unparsable Sentry SDK version %q: %v", sdk.Version, err)
	} else {
		r.sdkVersion.Store(sver)
	}
	if sdk.Identifier != "" {
		identifier = sdk.Identifier
	}
	debugf(r.logger, "Detected Sentry installed with SDK version: %s %s", identifier, sdk.Version)

	for _, probe := range r.probes {
		register := probe.Lookup(sdk)
		if register == nil {
			debugf(r.logger, "%s is not available", probe.Name)
			continue
		}
		debugf(r.logger, "%s is available", probe.Name)
		register(r.Processor())
		r.logger.Debug("Registered Sentry event hooks")
		return probe.Kind
	}
	r.logger.Debug("No Sentry api available to register event processor")
	return Unregistered
}
