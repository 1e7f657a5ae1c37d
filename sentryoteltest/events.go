package sentryoteltest

import (
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// Timestamp is the time of every event built by NewEvent.
var Timestamp = time.Date(2023, 4, 5, 6, 7, 8, 123456000, time.UTC)

type EventModifier func(*sentry.Event)

// NewEvent builds an error level event with a fresh EventID. It has no
// exceptions and no modules unless modifiers add them.
func NewEvent(mods ...EventModifier) *sentry.Event {
	event := sentry.NewEvent()
	event.EventID = sentry.EventID(strings.ReplaceAll(uuid.New().String(), "-", ""))
	event.Modules = nil
	event.Level = sentry.LevelError
	event.Timestamp = Timestamp
	for _, mod := range mods {
		mod(event)
	}
	return event
}

func WithException(typ string, value string, stacktrace *sentry.Stacktrace) EventModifier {
	return func(e *sentry.Event) {
		e.Exception = append(e.Exception, sentry.Exception{
			Type:       typ,
			Value:      value,
			Stacktrace: stacktrace,
		})
	}
}

func WithContext(name string, values map[string]interface{}) EventModifier {
	return func(e *sentry.Event) {
		e.Contexts[name] = values
	}
}

func WithModules(modules map[string]string) EventModifier {
	return func(e *sentry.Event) { e.Modules = modules }
}

func WithTransaction(transaction string) EventModifier {
	return func(e *sentry.Event) { e.Transaction = transaction }
}

// Transport is a sentry.Transport that keeps events in memory.
type Transport struct {
	lock   sync.Mutex
	events []*sentry.Event
}

func (t *Transport) Configure(sentry.ClientOptions) {}
func (t *Transport) Flush(_ time.Duration) bool     { return true }
func (t *Transport) Close()                         {}
func (t *Transport) SendEvent(event *sentry.Event) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.events = append(t.events, event)
}

func (t *Transport) Events() []*sentry.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}
