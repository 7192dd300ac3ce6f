// Package events is the in-process notification channel of a form. Handlers
// run synchronously, in subscription order, on the goroutine that emits.
package events

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
)

// Event names emitted by a form.
const (
	FieldChange  = "field:change"
	FormChange   = "form:change"
	FormValidate = "form:validate"
	FormSubmit   = "form:submit"
)

// Event is what handlers receive. Namespaced field events carry the base
// name FieldChange.
type Event struct {
	Name   string
	Detail any
}

// FieldChangeDetail is the detail of FieldChange events.
type FieldChangeDetail struct {
	Path  fieldpath.Path
	Value any
}

// FormChangeDetail is the detail of FormChange events.
type FormChangeDetail struct {
	Data any
}

// Handler processes one event.
type Handler func(evt Event)

// Subscription identifies a registered handler for Off.
type Subscription struct {
	event string
	id    uint64
}

// FieldEvent returns the namespaced event that fires alongside FieldChange
// for changes at p, e.g. "field:change:address.city".
func FieldEvent(p fieldpath.Path) string {
	return FieldChange + ":" + p.String()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus fans events out to handlers. A panicking handler is recovered and
// logged; the remaining handlers still run.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscriber
	nextID   uint64
	logger   *slog.Logger
}

// New creates a Bus. A nil logger discards handler failures.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		handlers: make(map[string][]subscriber),
		logger:   logger,
	}
}

// On registers h for event.
func (b *Bus) On(event string, h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[event] = append(b.handlers[event], subscriber{id: b.nextID, handler: h})
	return Subscription{event: event, id: b.nextID}
}

// Off removes the handler behind sub.
func (b *Bus) Off(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[sub.event]
	for i, s := range subs {
		if s.id == sub.id {
			b.handlers[sub.event] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers detail to the handlers of event. FieldChange events are
// also delivered to the namespaced handlers of the changed path.
func (b *Bus) Emit(event string, detail any) {
	evt := Event{Name: event, Detail: detail}
	b.dispatch(event, evt)
	if event != FieldChange {
		return
	}
	if change, ok := detail.(FieldChangeDetail); ok {
		b.dispatch(FieldEvent(change.Path), evt)
	}
}

func (b *Bus) dispatch(key string, evt Event) {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.handlers[key]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.call(key, s.handler, evt)
	}
}

func (b *Bus) call(key string, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.LogAttrs(context.Background(), slog.LevelWarn, "events: handler panic",
				slog.String("event", key),
				slog.Any("panic", r),
			)
		}
	}()
	h(evt)
}
