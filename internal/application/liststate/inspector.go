package liststate

import "sync"

// Inspector holds the one record currently shown in the detail view, if any.
type Inspector[T any] struct {
	mu      sync.Mutex
	current *T
}

// Open shows record, replacing whatever was shown before.
func (i *Inspector[T]) Open(record T) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current = &record
}

// Close hides the detail view.
func (i *Inspector[T]) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current = nil
}

// Current returns the inspected record and whether one is open.
func (i *Inspector[T]) Current() (T, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		var zero T
		return zero, false
	}
	return *i.current, true
}
