package storage

// Storage хранит последнее сообщение страницы для каждой сессии.
type Storage interface {
	// Save запоминает сообщение сессии, перезаписывая предыдущее.
	Save(sessionID, message string)
	// Take возвращает сообщение сессии и удаляет его.
	Take(sessionID string) (string, bool)
}
