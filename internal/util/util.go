package util

import (
	"regexp"
	"strings"
)

// urlPattern проверяет адрес так же, как форма на странице: совпадение
// ищется в любом месте строки, якорей нет.
var urlPattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&//=]*)`)

// IsValidURL reports whether raw looks like a URL accepted by the shortener.
func IsValidURL(raw string) bool {
	return urlPattern.MatchString(raw)
}

// JoinEndpoint склеивает базовый адрес бэкенда и путь эндпоинта.
func JoinEndpoint(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
