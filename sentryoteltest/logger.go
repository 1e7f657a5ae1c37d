// Package sentryoteltest has helpers for testing code that feeds
// sentry events through sentryotel.
package sentryoteltest

import (
	"strings"
	"sync"

	"github.com/muir/list"
)

type testingT interface {
	Log(...interface{})
	Name() string
}

// Logger is a sentryotel.Logger that passes every line to t.Log and
// remembers it.
type Logger struct {
	t     testingT
	lock  sync.Mutex
	lines []string
}

func NewLogger(t testingT) *Logger {
	return &Logger{t: t}
}

func (l *Logger) Debug(msg string) {
	l.t.Log(l.t.Name() + ": " + msg)
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = append(l.lines, msg)
}

// Lines returns a copy of everything logged so far.
func (l *Logger) Lines() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return list.Copy(l.lines)
}

// Count is the number of lines that contain substr.
func (l *Logger) Count(substr string) int {
	var n int
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
