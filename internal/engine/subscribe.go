package engine

import (
	"fmt"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
)

// Subscriber is called with a store's new state after a committed round
// changed it.
type Subscriber func(state any)

// AllSubscriber is called with every store's state after a committed round
// changed at least one store.
type AllSubscriber func(states map[string]any)

// subscribers is the subscriber registry. Callbacks are invoked in
// subscription order.
//
// Thread-safety: safe for concurrent use. Callbacks run outside the lock, so
// they may subscribe or unsubscribe.
type subscribers struct {
	mu      sync.Mutex
	nextID  uint64
	byStore map[string]map[uint64]Subscriber
	all     map[uint64]AllSubscriber
}

func newSubscribers() *subscribers {
	return &subscribers{
		byStore: make(map[string]map[uint64]Subscriber),
		all:     make(map[uint64]AllSubscriber),
	}
}

func (s *subscribers) add(name string, fn Subscriber) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if s.byStore[name] == nil {
		s.byStore[name] = make(map[uint64]Subscriber)
	}
	s.byStore[name][s.nextID] = fn
	return s.nextID
}

func (s *subscribers) addAll(fn AllSubscriber) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.all[s.nextID] = fn
	return s.nextID
}

func (s *subscribers) remove(name string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byStore[name], id)
}

func (s *subscribers) removeAll(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.all, id)
}

func (s *subscribers) forStore(name string) []Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.byStore[name]
	out := make([]Subscriber, 0, len(subs))
	for _, id := range slices.Sorted(maps.Keys(subs)) {
		out = append(out, subs[id])
	}
	return out
}

func (s *subscribers) forAll() []AllSubscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AllSubscriber, 0, len(s.all))
	for _, id := range slices.Sorted(maps.Keys(s.all)) {
		out = append(out, s.all[id])
	}
	return out
}

// SubscribeTo registers fn to be called whenever a committed round changes
// the named store. The returned function removes the subscription; calling
// it a second time fails with ErrCodeAlreadyUnsubscribed.
func (d *Dispatcher) SubscribeTo(name string, fn Subscriber) (func() error, error) {
	if name == "" {
		return nil, invalidArgument("store name must not be empty")
	}
	if fn == nil {
		return nil, invalidArgument("subscriber must not be nil")
	}
	if _, ok := d.snapshot()[name]; !ok {
		return nil, unknownStore(name)
	}

	id := d.subs.add(name, fn)
	return unsubscribeOnce(name, func() { d.subs.remove(name, id) }), nil
}

// SubscribeToAll registers fn to be called with every store's state whenever
// a committed round changes at least one store.
func (d *Dispatcher) SubscribeToAll(fn AllSubscriber) (func() error, error) {
	if fn == nil {
		return nil, invalidArgument("subscriber must not be nil")
	}

	id := d.subs.addAll(fn)
	return unsubscribeOnce("", func() { d.subs.removeAll(id) }), nil
}

func unsubscribeOnce(name string, remove func()) func() error {
	var done atomic.Bool
	return func() error {
		if !done.CompareAndSwap(false, true) {
			return &Error{Code: ErrCodeAlreadyUnsubscribed, Message: "subscription already removed", Store: name}
		}
		remove()
		return nil
	}
}

// notify calls the subscribers of every changed store, then the all-store
// subscribers once. Must only be called from the round queue, after commit.
func (d *Dispatcher) notify(changed []string) {
	if len(changed) == 0 {
		return
	}

	stores := d.snapshot()
	for _, name := range changed {
		state := stores[name].State()
		for _, fn := range d.subs.forStore(name) {
			d.callSubscriber(name, func() { fn(state) })
		}
	}

	all := d.subs.forAll()
	if len(all) == 0 {
		return
	}
	for _, fn := range all {
		d.callSubscriber("", func() { fn(d.GetStateForAll()) })
	}
}

// callSubscriber isolates the round queue from a panicking subscriber.
func (d *Dispatcher) callSubscriber(name string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("subscriber panicked",
				"store", name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	call()
}
