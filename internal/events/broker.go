// Package events delivers change notifications for submissions and adjustments.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/Erkin33/Platform-sub000/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Listener func(event models.ChangeEvent)

type subscription struct {
	id uint64
	fn Listener
}

// Broker is an in-process observer. Listeners registered when Publish is called
// run synchronously, in subscription order, on the publishing goroutine.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewBroker() *Broker {
	return &Broker{}
}

// Subscribe registers fn and returns a func that removes it.
func (b *Broker) Subscribe(fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Broker) Publish(_ context.Context, event models.ChangeEvent) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(event)
	}
	return nil
}

func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event models.ChangeEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
