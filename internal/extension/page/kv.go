package page

import (
	"context"
	"sync"
)

// KV is the extension-wide durable key-value store. Unlike the session slot
// it outlives the page and can change from other execution contexts, so it
// carries a change subscription.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Watch registers a callback invoked with the key and new value on every
	// change; deletes report an empty value. The returned func cancels it.
	Watch(fn func(key, value string)) (cancel func())
}

// MemoryKV is an in-process KV used by the simulator and tests. Watchers are
// invoked synchronously on the mutating goroutine.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string

	subMu sync.Mutex
	subs  map[int]func(key, value string)
	next  int
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: map[string]string{},
		subs:   map[int]func(key, value string){},
	}
}

func (s *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	s.notify(key, value)
	return nil
}

func (s *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()
	if existed {
		s.notify(key, "")
	}
	return nil
}

func (s *MemoryKV) Watch(fn func(key, value string)) (cancel func()) {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *MemoryKV) notify(key, value string) {
	s.subMu.Lock()
	fns := make([]func(key, value string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(key, value)
	}
}
