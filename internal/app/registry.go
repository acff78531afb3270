package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/internal/ports"
)

var ErrObserverNotFound = errors.New("observer not registered")

// ObserverRegistry is an ordered list of observers. Duplicates are allowed;
// each registration is notified separately.
//
// Observers are compared by interface equality, so implementations must be
// comparable (pointer receivers in practice).
type ObserverRegistry struct {
	observers []ports.Observer
	mu        sync.RWMutex
}

func NewObserverRegistry() *ObserverRegistry {
	return &ObserverRegistry{}
}

func (r *ObserverRegistry) Add(o ports.Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
	log.Debug().Str("observer", o.Name()).Int("count", len(r.observers)).Msg("Observer added")
}

// Remove drops the first registration of o.
func (r *ObserverRegistry) Remove(o ports.Observer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
			log.Debug().Str("observer", o.Name()).Int("count", len(r.observers)).Msg("Observer removed")
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrObserverNotFound, o.Name())
}

// Notify delivers snap to every observer in registration order. The first
// failing observer stops the fan-out.
func (r *ObserverRegistry) Notify(snap *domain.Snapshot) error {
	for _, o := range r.Observers() {
		if err := o.Update(snap); err != nil {
			return fmt.Errorf("observer %s: %w", o.Name(), err)
		}
	}
	return nil
}

func (r *ObserverRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Observers returns a copy of the registration list.
func (r *ObserverRegistry) Observers() []ports.Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.Observer, len(r.observers))
	copy(out, r.observers)
	return out
}
