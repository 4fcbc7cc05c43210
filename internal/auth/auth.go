package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// CookieName — имя куки с идентификатором сессии страницы.
	CookieName   = "session_id"
	cookieMaxAge = 24 * 60 * 60 // 1 день
)

// Auth выдаёт и проверяет подписанные идентификаторы сессий.
type Auth struct {
	SecretKey string
}

// New создаёт Auth. Пустой секрет заменяется случайным.
func New(secret string) *Auth {
	if secret == "" {
		secret = uuid.NewString()
	}
	return &Auth{SecretKey: secret}
}

// Создать подпись
func (a *Auth) sign(sessionID string) string {
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Создать куки вида: session_id=sessionID:signature
func (a *Auth) issueCookie(w http.ResponseWriter) string {
	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    a.SignCookieValue(sessionID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	})
	return sessionID
}

// GetOrSetSessionID возвращает сессию из куки или выдаёт новую.
func (a *Auth) GetOrSetSessionID(w http.ResponseWriter, r *http.Request) string {
	if sessionID, ok := a.ValidateSessionID(r); ok {
		return sessionID
	}
	return a.issueCookie(w)
}

// ValidateSessionID проверяет наличие и подпись куки сессии.
func (a *Auth) ValidateSessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || !hmac.Equal([]byte(a.sign(parts[0])), []byte(parts[1])) {
		return "", false
	}

	return parts[0], true
}

// SignCookieValue возвращает значение куки для идентификатора сессии.
func (a *Auth) SignCookieValue(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionID, a.sign(sessionID))
}
