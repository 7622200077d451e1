package mw

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/monitoring"
)

// Sentry opens a transaction per request on a cloned hub.
func Sentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub()
		if hub == nil || hub.Client() == nil {
			c.Next()
			return
		}
		hub = hub.Clone()

		name := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		ctx := sentry.SetHubOnContext(c.Request.Context(), hub)
		transaction := sentry.StartTransaction(ctx, name, sentry.ContinueFromRequest(c.Request))
		defer func() {
			transaction.Status = sentry.HTTPtoSpanStatus(c.Writer.Status())
			transaction.Finish()
		}()

		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetContext("Request", map[string]interface{}{
				"Method":  c.Request.Method,
				"URL":     c.Request.URL.String(),
				"Headers": safeHeaders(c.Request.Header),
			})
			scope.SetTag("http.method", c.Request.Method)
			scope.SetTag("request_id", GetRequestID(c))
		})

		c.Request = c.Request.WithContext(transaction.Context())
		c.Next()
	}
}

// ErrorReporter forwards errors attached with c.Error to Sentry.
func ErrorReporter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, ginErr := range c.Errors {
			monitoring.CaptureError(ginErr.Err, map[string]interface{}{
				"endpoint":   c.Request.URL.Path,
				"method":     c.Request.Method,
				"status":     c.Writer.Status(),
				"request_id": GetRequestID(c),
			})
		}
	}
}

func safeHeaders(h http.Header) map[string]interface{} {
	safe := make(map[string]interface{})
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			safe[k] = "[FILTERED]"
		} else {
			safe[k] = v
		}
	}
	return safe
}
