package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/platform/requestctx"
)

const (
	// CSRFHeader carries the token on htmx requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField carries the token on plain form posts.
	CSRFField = "_csrf"
)

// CSRF rejects unsafe requests whose token does not match the session's.
// It must run after Session.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isUnsafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			sess, ok := SessionFromContext(r.Context())
			if !ok || sess.CSRFToken() == "" {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			submitted := r.Header.Get(CSRFHeader)
			if submitted == "" {
				submitted = r.PostFormValue(CSRFField)
			}
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(sess.CSRFToken())) != 1 {
				requestctx.Logger(r.Context()).Warn("csrf token mismatch", zap.Bool("missing", submitted == ""))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromContext returns the session token to embed in forms and meta tags.
func CSRFTokenFromContext(r *http.Request) string {
	if sess, ok := SessionFromContext(r.Context()); ok {
		return sess.CSRFToken()
	}
	return ""
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
