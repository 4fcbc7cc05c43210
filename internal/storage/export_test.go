package storage

import "time"

// SetClock подменяет источник времени в тестах.
func (s *MessageStore) SetClock(now func() time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.now = now
}
