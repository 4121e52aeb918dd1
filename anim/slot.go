package anim

import "sync"

// A Slot is a single-item overwrite-latest mailbox. Each Publish replaces
// any unconsumed value, so a slow consumer always observes the newest
// state and never accumulates a backlog. It is the hand-off used between
// the animation driver and the render worker, and between the render
// worker and the display sink.
type Slot[T any] struct {
	mu     sync.Mutex
	value  T
	seq    uint64
	taken  uint64
	notify chan struct{}
}

// NewSlot creates an empty Slot.
func NewSlot[T any]() *Slot[T] {
	s := new(Slot[T])
	s.notify = make(chan struct{}, 1)
	return s
}

// Publish replaces the held value and wakes one waiting consumer. The lock
// covers only the copy-in; it is never held while a consumer renders or
// waits.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	s.value = v
	s.seq++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TakeLatest blocks until a value newer than the previous take has been
// published, then returns it. Publishes between two takes collapse to the
// most recent one. A close of stop aborts the wait and returns ok=false.
func (s *Slot[T]) TakeLatest(stop <-chan struct{}) (v T, ok bool) {
	for {
		s.mu.Lock()
		if s.seq > s.taken {
			s.taken = s.seq
			v = s.value
			s.mu.Unlock()
			return v, true
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-stop:
			return v, false
		}
	}
}

// Latest returns the most recently published value without waiting and
// without consuming it. ok is false until the first publish. Reads are
// idempotent until the next publish.
func (s *Slot[T]) Latest() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		return v, false
	}
	return s.value, true
}
