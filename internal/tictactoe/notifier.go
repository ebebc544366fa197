package tictactoe

import "sync"

// Source tells a listener where a state change came from.
type Source int

const (
	// SourceLocal - the change was committed by this store.
	SourceLocal Source = iota
	// SourceExternal - another process rewrote the shared slot.
	SourceExternal
)

func (that Source) String() string {
	if that == SourceExternal {
		return "external"
	}

	return "local"
}

type Listener func(source Source)

type subscription struct {
	id       uint64
	listener Listener
}

// Notifier fans a zero payload "state changed" signal out to its listeners in subscription order.
type Notifier struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners []subscription
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe - registers a listener and returns the function removing it.
func (that *Notifier) Subscribe(listener Listener) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	that.listeners = append(that.listeners, subscription{id: id, listener: listener})

	var once sync.Once

	return func() {
		once.Do(func() {
			that.unsubscribe(id)
		})
	}
}

// Notify is raised after every commit made by the store.
func (that *Notifier) Notify() {
	that.dispatch(SourceLocal)
}

// NotifyExternal is raised when the shared slot was rewritten elsewhere.
func (that *Notifier) NotifyExternal() {
	that.dispatch(SourceExternal)
}

func (that *Notifier) dispatch(source Source) {
	that.mu.RLock()
	listeners := make([]subscription, len(that.listeners))
	copy(listeners, that.listeners)
	that.mu.RUnlock()

	for _, sub := range listeners {
		sub.listener(source)
	}
}

func (that *Notifier) unsubscribe(id uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, sub := range that.listeners {
		if sub.id == id {
			that.listeners = append(that.listeners[:i], that.listeners[i+1:]...)
			return
		}
	}
}
