package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

type key string

// TraceIDKey is set by the logging middleware for every request.
const TraceIDKey key = "trace_id"

// GetTraceIdOfRequest returns the trace id stored on the request context,
// or an empty string if the logging middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Request.Context().Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceId
}
