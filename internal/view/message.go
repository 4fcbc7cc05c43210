// Package view отвечает за отображение результата на странице.
package view

import (
	"strings"

	"github.com/Totarae/URLShortenerFront/internal/model"
)

// Kind определяет, как отрисовать сообщение.
type Kind int

const (
	// KindPrompt — сообщения нет, показываем приглашение.
	KindPrompt Kind = iota
	// KindLink — сообщение является короткой ссылкой.
	KindLink
	// KindFailure — сообщение является текстом ошибки.
	KindFailure
)

// Project превращает результат в сообщение: short, иначе error, иначе пусто.
func Project(res *model.ShortenResult) string {
	if res == nil {
		return ""
	}
	if res.Short != "" {
		return res.Short
	}
	return res.ErrorText()
}

// Classify определяет вид сообщения. Успехом считается всё, что содержит "http".
func Classify(msg string) Kind {
	switch {
	case msg == "":
		return KindPrompt
	case strings.Contains(msg, "http"):
		return KindLink
	default:
		return KindFailure
	}
}
