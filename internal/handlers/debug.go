package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zekariasasaminew/campusEx/internal/telemetry"
)

// RegisterDebugRoutes wires endpoints that only exist when debug routes are
// enabled. Not for production traffic.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	// Pushes one audit event through the full pipeline so the stream can be
	// verified end to end.
	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		requestID := requestIDFromContext(c)
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestID, auditUserID(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestID})
	})
}
