package events

import (
	"context"
	"slices"
	"sync"

	"github.com/cheggaaa/mb/v3"
	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app/logger"
)

var log = logger.NewNamed("mindmup.events")

type Listener func(e Event)

// Dispatcher delivers events to listeners synchronously, in registration order,
// and to subscriptions through their queues
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[Type][]Listener
	subs      []*Subscription
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[Type][]Listener)}
}

func (d *Dispatcher) AddEventListener(t Type, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[t] = append(d.listeners[t], l)
}

// On registers a listener typed by its event struct
func On[E Event](d *Dispatcher, fn func(e E)) {
	var empty E
	d.AddEventListener(empty.Type(), func(e Event) {
		if ev, ok := e.(E); ok {
			fn(ev)
		}
	})
}

func (d *Dispatcher) Dispatch(e Event) {
	d.mu.RLock()
	listeners := d.listeners[e.Type()]
	subs := d.subs
	d.mu.RUnlock()
	for _, l := range listeners {
		l(e)
	}
	for _, s := range subs {
		s.push(e)
	}
}

// Subscribe returns a queue receiving the given event types, or all of them when none are given.
// size limits the queue, 0 means unlimited; events overflowing the queue are dropped.
func (d *Dispatcher) Subscribe(size int, types ...Type) *Subscription {
	s := &Subscription{
		d:     d,
		types: types,
		batch: mb.New[Event](size),
	}
	d.mu.Lock()
	d.subs = append(d.subs, s)
	d.mu.Unlock()
	return s
}

func (d *Dispatcher) unsubscribe(s *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// copy on write, Dispatch may iterate the old slice
	d.subs = slices.DeleteFunc(slices.Clone(d.subs), func(sub *Subscription) bool {
		return sub == s
	})
}

type Subscription struct {
	d     *Dispatcher
	types []Type
	batch *mb.MB[Event]
}

func (s *Subscription) push(e Event) {
	if len(s.types) > 0 && !slices.Contains(s.types, e.Type()) {
		return
	}
	if err := s.batch.TryAdd(e); err != nil {
		log.Warn("event dropped", zap.String("type", string(e.Type())), zap.Error(err))
	}
}

// Next blocks until an event arrives. After Close it drains the remaining events and then returns mb.ErrClosed.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	return s.batch.WaitOne(ctx)
}

// Len returns the number of queued events
func (s *Subscription) Len() int {
	return s.batch.Len()
}

func (s *Subscription) Close() error {
	s.d.unsubscribe(s)
	return s.batch.Close()
}
