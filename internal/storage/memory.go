package storage

import (
	"sync"
	"time"
)

const (
	// DefaultMessageTTL — сколько живёт непрочитанное сообщение.
	DefaultMessageTTL = 10 * time.Minute
	// DefaultMaxMessages — сколько непрочитанных сообщений хранится одновременно.
	DefaultMaxMessages = 10000
)

type entry struct {
	savedAt time.Time
	message string
}

// MessageStore provides a thread-safe per-session message slot.
// Concurrent Save calls for one session race: the last one wins.
// Unread messages expire after ttl; when the store is full the oldest one is evicted.
type MessageStore struct {
	data       map[string]entry
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	mutex      sync.Mutex
}

// NewMessageStore initializes a new MessageStore with default limits
func NewMessageStore() *MessageStore {
	return NewMessageStoreWithLimits(DefaultMessageTTL, DefaultMaxMessages)
}

// NewMessageStoreWithLimits создаёт хранилище с заданными TTL и ёмкостью.
// Неположительные значения заменяются значениями по умолчанию.
func NewMessageStoreWithLimits(ttl time.Duration, maxEntries int) *MessageStore {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxMessages
	}
	return &MessageStore{
		data:       make(map[string]entry),
		now:        time.Now,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Save stores the latest message of a session
func (s *MessageStore) Save(sessionID, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	if _, exists := s.data[sessionID]; !exists && len(s.data) >= s.maxEntries {
		s.pruneLocked(now)
	}
	s.data[sessionID] = entry{message: message, savedAt: now}
}

// Take retrieves the message and clears the slot
func (s *MessageStore) Take(sessionID string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, exists := s.data[sessionID]
	if !exists {
		return "", false
	}
	delete(s.data, sessionID)
	if s.now().Sub(e.savedAt) > s.ttl {
		return "", false
	}
	return e.message, true
}

// Len возвращает количество непрочитанных сообщений.
func (s *MessageStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.data)
}

// pruneLocked удаляет просроченные записи, а если места всё ещё нет — самую старую.
func (s *MessageStore) pruneLocked(now time.Time) {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, e := range s.data {
		if now.Sub(e.savedAt) > s.ttl {
			delete(s.data, id)
			continue
		}
		if oldestID == "" || e.savedAt.Before(oldestAt) {
			oldestID, oldestAt = id, e.savedAt
		}
	}
	if len(s.data) >= s.maxEntries && oldestID != "" {
		delete(s.data, oldestID)
	}
}
