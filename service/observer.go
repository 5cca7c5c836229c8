package service

import "github.com/kotleni/cats/internal/models"

// Binding is a registered observer. C receives every snapshot published
// after the bind. Delivery is latest-wins: a slow reader skips intermediate
// snapshots but always sees the most recent one. C is closed by Unbind or
// when the tick loop stops.
type Binding struct {
	C  <-chan models.Snapshot
	ID uint64
}

// Bind registers an observer and returns the state at the moment of
// binding. It never blocks on other observers.
func (s *Service) Bind(buffer int) (Binding, models.Snapshot) {
	if buffer < 1 {
		buffer = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++

	ch := make(chan models.Snapshot, buffer)
	s.observers[s.nextID] = ch

	return Binding{ID: s.nextID, C: ch}, s.snapshotLocked()
}

// Unbind detaches an observer. The countdown is not affected. Unknown ids
// are ignored.
func (s *Service) Unbind(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.observers[id]; ok {
		delete(s.observers, id)
		close(ch)
	}
}

// Observers returns the number of bound observers.
func (s *Service) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.observers)
}

func (s *Service) publishLocked(snap models.Snapshot) {
	for _, ch := range s.observers {
		select {
		case ch <- snap:
			continue
		default:
		}

		// full: drop the oldest pending snapshot
		select {
		case <-ch:
		default:
		}

		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Service) closeObserversLocked() {
	for id, ch := range s.observers {
		delete(s.observers, id)
		close(ch)
	}
}
