package midiwindows

import "sync"

// instanceRegistry maps the integer handed to winmm as dwInstance back to its
// client, so no Go pointer crosses the callback boundary as a uintptr.
type instanceRegistry[T any] struct {
	mu   sync.RWMutex
	next uintptr
	byID map[uintptr]T
}

func newInstanceRegistry[T any]() *instanceRegistry[T] {
	return &instanceRegistry[T]{byID: make(map[uintptr]T)}
}

// add stores v and returns its non-zero id.
func (r *instanceRegistry[T]) add(v T) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.byID[r.next] = v
	return r.next
}

func (r *instanceRegistry[T]) lookup(id uintptr) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	return v, ok
}

func (r *instanceRegistry[T]) remove(id uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}
