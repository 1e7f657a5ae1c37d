package sentryotel_test

import (
	"context"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoplog/sentryotel"
	"github.com/xoplog/sentryotel/sentryoteltest"
)

type fakeSDK struct {
	modern     []sentry.EventProcessor
	legacy     []sentry.EventProcessor
	haveModern bool
	haveLegacy bool
	loads      int
}

func (f *fakeSDK) loader() sentryotel.Loader {
	return func(context.Context) (*sentryotel.SDK, error) {
		f.loads++
		sdk := &sentryotel.SDK{Identifier: "sentry.go", Version: "0.18.0"}
		if f.haveModern {
			sdk.AddEventProcessor = func(p sentry.EventProcessor) { f.modern = append(f.modern, p) }
		}
		if f.haveLegacy {
			sdk.AddGlobalEventProcessor = func(p sentry.EventProcessor) { f.legacy = append(f.legacy, p) }
		}
		return sdk, nil
	}
}

func newRegistrar(t *testing.T, opts ...sentryotel.Option) (*sentryotel.Registrar, *sentryoteltest.Recorder, *sentryoteltest.Logger) {
	rec := sentryoteltest.NewRecorder()
	t.Cleanup(func() {
		assert.NoError(t, rec.Shutdown(), "shutdown")
	})
	log := sentryoteltest.NewLogger(t)
	opts = append([]sentryotel.Option{sentryotel.WithLogger(log)}, opts...)
	return sentryotel.NewRegistrar(sentryotel.NewConverter(rec.Tracer()), opts...), rec, log
}

func TestRegistrarPrefersModernAPI(t *testing.T) {
	sdk := &fakeSDK{haveModern: true, haveLegacy: true}
	r, _, log := newRegistrar(t, sentryotel.WithLoader(sdk.loader()))
	assert.Equal(t, sentryotel.Unregistered, r.Kind())

	kind := r.Initialize(context.Background())
	assert.Equal(t, sentryotel.ModernRegistration, kind)
	assert.Equal(t, sentryotel.ModernRegistration, r.Kind())
	assert.Len(t, sdk.modern, 1)
	assert.Empty(t, sdk.legacy)
	require.NotNil(t, r.SDKVersion())
	assert.Equal(t, "0.18.0", r.SDKVersion().String())
	assert.Equal(t, 1, log.Count("Detected Sentry installed with SDK version: sentry.go 0.18.0"))
	assert.Equal(t, 1, log.Count("Registered Sentry event hooks"))
}

func TestRegistrarFallsBackToLegacyAPI(t *testing.T) {
	sdk := &fakeSDK{haveLegacy: true}
	r, rec, log := newRegistrar(t, sentryotel.WithLoader(sdk.loader()))

	assert.Equal(t, sentryotel.LegacyRegistration, r.Initialize(context.Background()))
	require.Len(t, sdk.legacy, 1)
	assert.Empty(t, sdk.modern)
	assert.Equal(t, 1, log.Count("Client.AddEventProcessor is not available"))
	assert.Equal(t, 1, log.Count("AddGlobalEventProcessor is available"))

	event := sentryoteltest.NewEvent(sentryoteltest.WithException("E", "e", nil))
	assert.Same(t, event, sdk.legacy[0](event, &sentry.EventHint{}))
	assert.Len(t, rec.Ended(), 1)
}

func TestRegistrarWithoutAnyAPI(t *testing.T) {
	sdk := &fakeSDK{}
	r, _, log := newRegistrar(t, sentryotel.WithLoader(sdk.loader()))
	assert.Equal(t, sentryotel.Unregistered, r.Initialize(context.Background()))
	assert.Equal(t, 1, log.Count("No Sentry api available to register event processor"))
}

func TestRegistrarLoaderFailures(t *testing.T) {
	cases := []struct {
		name   string
		loader sentryotel.Loader
		logged string
	}{
		{
			name: "error",
			loader: func(context.Context) (*sentryotel.SDK, error) {
				return nil, errors.New("sentry-go not linked")
			},
			logged: "Error initializing Sentry SDK: sentry-go not linked",
		},
		{
			name: "panic",
			loader: func(context.Context) (*sentryotel.SDK, error) {
				panic("loader exploded")
			},
			logged: "Error initializing Sentry SDK: loader exploded",
		},
		{
			name: "nil",
			loader: func(context.Context) (*sentryotel.SDK, error) {
				return nil, nil
			},
			logged: "Sentry SDK not found",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r, _, log := newRegistrar(t, sentryotel.WithLoader(tc.loader))
			assert.NotPanics(t, func() {
				assert.Equal(t, sentryotel.Unregistered, r.Initialize(context.Background()))
			})
			assert.Equal(t, 1, log.Count(tc.logged))
		})
	}
}

func TestRegistrarUnparsableVersion(t *testing.T) {
	r, _, log := newRegistrar(t, sentryotel.WithLoader(func(context.Context) (*sentryotel.SDK, error) {
		return &sentryotel.SDK{
			Version:                 "sentry.go/01.2.3",
			AddGlobalEventProcessor: func(sentry.EventProcessor) {},
		}, nil
	}))
	assert.Equal(t, sentryotel.LegacyRegistration, r.Initialize(context.Background()))
	assert.Nil(t, r.SDKVersion())
	assert.Equal(t, 1, log.Count("Unparsable Sentry SDK version"))
}

func TestRegistrarOnlyTriesOnce(t *testing.T) {
	sdk := &fakeSDK{}
	r, _, _ := newRegistrar(t, sentryotel.WithLoader(sdk.loader()))
	assert.Equal(t, sentryotel.Unregistered, r.Initialize(context.Background()))
	sdk.haveLegacy = true
	assert.Equal(t, sentryotel.Unregistered, r.Initialize(context.Background()))
	assert.Equal(t, 1, sdk.loads)
	assert.Empty(t, sdk.legacy)
}

func TestRegistrarCustomProbes(t *testing.T) {
	sdk := &fakeSDK{haveModern: true, haveLegacy: true}
	r, _, _ := newRegistrar(t,
		sentryotel.WithLoader(sdk.loader()),
		sentryotel.WithProbes(sentryotel.DefaultProbes[1]),
	)
	assert.Equal(t, sentryotel.LegacyRegistration, r.Initialize(context.Background()))
	assert.Empty(t, sdk.modern)
	assert.Len(t, sdk.legacy, 1)
}

func TestProcessorReturnsEventUnchanged(t *testing.T) {
	cases := []struct {
		name  string
		event *sentry.Event
		spans int
		errs  int
	}{
		{
			name:  "no-exception",
			event: sentryoteltest.NewEvent(sentryoteltest.WithTransaction("GET /")),
		},
		{
			name: "exception",
			event: sentryoteltest.NewEvent(
				sentryoteltest.WithException("E", "e", nil),
				sentryoteltest.WithContext("app", map[string]interface{}{"app_name": "App"}),
			),
			spans: 1,
		},
		{
			name: "malformed",
			event: sentryoteltest.NewEvent(
				sentryoteltest.WithException("E", "e", nil),
				sentryoteltest.WithContext("app", map[string]interface{}{"app_memory": []int{1, 2}}),
			),
			errs: 1,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r, rec, log := newRegistrar(t)
			snapshot := deepcopy.Copy(tc.event).(*sentry.Event)
			var returned *sentry.Event
			assert.NotPanics(t, func() {
				returned = r.Processor()(tc.event, &sentry.EventHint{})
			})
			assert.Same(t, tc.event, returned)
			assert.Equal(t, snapshot, tc.event)
			assert.Len(t, rec.Ended(), tc.spans)
			assert.Equal(t, 1, log.Count("Received event"))
			assert.Equal(t, tc.errs, log.Count("Error processing event"))
		})
	}
}

func TestProcessorPassesNilThrough(t *testing.T) {
	r, rec, _ := newRegistrar(t)
	assert.Nil(t, r.Processor()(nil, nil))
	assert.Empty(t, rec.Ended())
}

func TestProcessorSurvivesPanickingLogger(t *testing.T) {
	rec := sentryoteltest.NewRecorder()
	defer func() { assert.NoError(t, rec.Shutdown()) }()
	r := sentryotel.NewRegistrar(sentryotel.NewConverter(rec.Tracer()),
		sentryotel.WithLogger(sentryotel.LoggerFunc(func(string) { panic("sink exploded") })))
	event := sentryoteltest.NewEvent(sentryoteltest.WithException("E", "e", nil))
	var returned *sentry.Event
	assert.NotPanics(t, func() {
		returned = r.Processor()(event, nil)
	})
	assert.Same(t, event, returned)
}

func TestSentryClientEndToEnd(t *testing.T) {
	transport := &sentryoteltest.Transport{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         "https://public@example.com/1",
		Transport:   transport,
		Environment: "test",
		ServerName:  "ci-runner",
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	r, rec, _ := newRegistrar(t)
	require.Equal(t, sentryotel.ModernRegistration, r.Initialize(ctx))

	hub.CaptureException(errors.New("boom"))
	hub.CaptureMessage("not an exception")

	sent := transport.Events()
	require.Len(t, sent, 2)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.NotEmpty(t, sent[0].Exception)
	assert.Equal(t, sent[0].Exception[0].Type+" "+sent[0].Transaction, spans[0].Name())
	assert.Len(t, spans[0].Events(), len(sent[0].Exception))
	attrs := sentryoteltest.Attributes(spans[0].Attributes())
	assert.Equal(t, "ci-runner", attrs["host.name"].AsString())
	assert.JSONEq(t, `{"environment":"test"}`, attrs[sentryotel.ExceptionTagsKey].AsString())
}
