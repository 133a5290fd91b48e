package http

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or assigns a new one,
// echoes it on the response and logs the finished request with it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 500 {
			log.Printf("[REQ] %s %s %s -> %d (%s)", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		}
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

var securityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()"},
}

// SecurityHeadersMiddleware sets the fixed security headers and a CSP for the
// server-rendered pages, which load no scripts and post forms to this host.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range securityHeaders {
			c.Header(h[0], h[1])
		}

		formAction := "'self'"
		if c.Request.Host != "" {
			formAction += " https://" + c.Request.Host
		}
		c.Header("Content-Security-Policy", strings.Join([]string{
			"default-src 'self'",
			"script-src 'self'",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"frame-ancestors 'none'",
			"form-action " + formAction,
		}, "; "))

		c.Next()
	}
}

const readOnlyMessage = "This action is disabled in read-only mode"

// ReadOnlyMiddleware blocks every method that could write. API callers get
// JSON, pages get plain text.
func ReadOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(c.GetHeader("Accept"), "application/json") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     readOnlyMessage,
				"read_only": true,
			})
			return
		}
		c.String(http.StatusForbidden, readOnlyMessage)
		c.Abort()
	}
}
