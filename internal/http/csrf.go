package http

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	csrfTokenKey  = "csrf_token"
	csrfFieldName = "gorilla.csrf.Token"
)

// CSRFMiddleware protects the server-rendered builder forms. secret must be
// 32 bytes. With secure unset the request is treated as plain HTTP, so the
// HTTPS referer check is skipped.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfTokenKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, r)

		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	const message = "CSRF token invalid or missing"

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
		return
	}

	// Send form posts back to the page they came from
	if referer := r.Referer(); referer != "" && !strings.Contains(referer, "error=") {
		separator := "?"
		if strings.Contains(referer, "?") {
			separator = "&"
		}
		http.Redirect(w, r, referer+separator+"error=Form+expired.+Please+try+again.", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(message))
}

// csrfField renders the hidden token input, or nothing when CSRF protection
// is off.
func csrfField(c *gin.Context) template.HTML {
	token := c.GetString(csrfTokenKey)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + csrfFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}
