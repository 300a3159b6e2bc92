// Package progress carries per-iteration training events from a trainer to
// any number of subscribers. Delivery is synchronous on the publishing
// goroutine so that events arrive in iteration order.
package progress

import (
	"sync"
	"time"

	"hmmkit/common"
)

type Event struct {
	Session       string
	Method        common.TrainMethod
	Iteration     int
	LogLikelihood float64
	Delta         float64 // vs the previous iteration; iteration 1 compares to the initial parameters
	Elapsed       time.Duration
}

// Reporter is what trainers publish to.
type Reporter interface {
	Publish(e *Event)
}

type Subscriber interface {
	HandleProgress(e *Event)
}

type Bus struct {
	subs  []Subscriber
	mutex sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Register(sub Subscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	//去重
	for _, s := range b.subs {
		if s == sub {
			return
		}
	}
	b.subs = append(b.subs, sub)
}

func (b *Bus) Publish(e *Event) {
	b.mutex.RLock()
	subs := b.subs
	b.mutex.RUnlock()

	for _, sub := range subs {
		sub.HandleProgress(e)
	}
}

// Recorder keeps every event it receives, grouped by method.
type Recorder struct {
	events []Event
	mutex  sync.Mutex
}

func (r *Recorder) HandleProgress(e *Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, *e)
}

func (r *Recorder) Events() []Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Event(nil), r.events...)
}

// Traces returns the log-likelihood series per method.
func (r *Recorder) Traces() map[common.TrainMethod][]float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	traces := make(map[common.TrainMethod][]float64)
	for _, e := range r.events {
		traces[e.Method] = append(traces[e.Method], e.LogLikelihood)
	}
	return traces
}

// LogSubscriber writes one line per iteration.
type LogSubscriber struct {
	Log common.Logger
}

func (l *LogSubscriber) HandleProgress(e *Event) {
	l.Log.Infof("[%s] %s iter %d: logP = %.6f (delta %.3g, %s)",
		e.Session, e.Method, e.Iteration, e.LogLikelihood, e.Delta, e.Elapsed)
}
