package model

import (
	"encoding/json"
	"io"
)

// URLRequest представляет запрос на сокращение URL.
type URLRequest struct {
	URL   string `json:"url"`
	Short string `json:"short"`
}

// FileRequest представляет загружаемый файл и желаемый алиас.
type FileRequest struct {
	Content     io.Reader
	Name        string
	ContentType string
	Short       string
	Size        int64
}

// ShortenResult представляет ответ сервиса сокращения ссылок.
type ShortenResult struct {
	Short string  `json:"short"`
	Error *string `json:"error"`

	// Raw хранит тело ответа бэкенда как есть
	Raw json.RawMessage `json:"-"`
}

// NewErrorResult создаёт результат с локальной ошибкой валидации.
func NewErrorResult(msg string) *ShortenResult {
	return &ShortenResult{Short: "", Error: &msg}
}

// ErrorText возвращает текст ошибки или пустую строку.
func (r *ShortenResult) ErrorText() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}
