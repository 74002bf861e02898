package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// operatorAuth guards the restocking routes with a shared operator token.
type operatorAuth struct {
	tokenDigest []byte
}

func newOperatorAuth(token string) *operatorAuth {
	if token == "" {
		return &operatorAuth{}
	}
	return &operatorAuth{tokenDigest: digest(token)}
}

func (a *operatorAuth) enabled() bool {
	return len(a.tokenDigest) > 0
}

func (a *operatorAuth) validToken(provided string) bool {
	if !a.enabled() || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare(a.tokenDigest, digest(provided)) == 1
}

func (a *operatorAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			writeError(w, http.StatusForbidden, "operator access is disabled")
			return
		}

		token, ok := bearerToken(r)
		if !ok || !a.validToken(token) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="operator"`)
			writeError(w, http.StatusUnauthorized, "invalid operator token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

// Digests have a fixed length, so the comparison leaks nothing about the token length.
func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
