package auth

import (
	"crypto/subtle"
	"net/http"
)

// Заголовок с ключом партнера
const HeaderAPIKey = "X-API-KEY"

type Auth interface {
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

type auth struct {
	apiKey string
}

func NewAuth(apiKey string) Auth {
	return &auth{apiKey: apiKey}
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// сравнение ключа из заголовка с настроенным секретом
		key := r.Header.Get(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r)
	}
}
