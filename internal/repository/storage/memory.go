package storage

import "sync"

// changeBuffer is how many pending change signals a slow watcher may fall behind by.
const changeBuffer = 16

// Change describes a write to a key of the memory storage.
type Change struct {
	Key    string
	Origin string
}

// MemoryStorage is a key-value slot shared by every repository created on it inside the process.
type MemoryStorage struct {
	mu       sync.RWMutex
	values   map[string][]byte
	nextID   uint64
	watchers map[uint64]chan Change
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		values:   make(map[string][]byte),
		watchers: make(map[uint64]chan Change),
	}
}

func (that *MemoryStorage) Get(key string) ([]byte, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	value, ok := that.values[key]
	if !ok {
		return nil, false
	}

	data := make([]byte, len(value))
	copy(data, value)

	return data, true
}

// Set - stores the value and signals watchers without waiting for them.
func (that *MemoryStorage) Set(key string, value []byte, origin string) {
	data := make([]byte, len(value))
	copy(data, value)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.values[key] = data

	for _, watcher := range that.watchers {
		select {
		case watcher <- Change{Key: key, Origin: origin}:
		default:
		}
	}
}

// Watch - returns a channel of changes and the function closing it.
func (that *MemoryStorage) Watch() (<-chan Change, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	changes := make(chan Change, changeBuffer)
	that.watchers[id] = changes

	var once sync.Once

	return changes, func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			delete(that.watchers, id)
			close(changes)
		})
	}
}
