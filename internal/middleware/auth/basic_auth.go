package auth

import (
	"crypto/subtle"
	"net/http"
)

const defaultRealm = "Smeta Admin"

// BasicAuth пропускает запрос только с заданными логином и паролем.
// Пустой логин закрывает доступ полностью.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return BasicAuthRealm(defaultRealm, username, password)
}

func BasicAuthRealm(realm, username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || username == "" {
				requireAuth(w, realm)
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !userOK || !passOK {
				requireAuth(w, realm)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requireAuth(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
