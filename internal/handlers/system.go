package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lamason/internal/events"
	"lamason/internal/store"
)

func Health(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureStore(c.Request.Context(), st); err != nil {
			log.Printf("[DB] [ERROR] health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// AdminEvents upgrades to a WebSocket that streams lifecycle events.
func AdminEvents(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Printf("[WS] [INFO] admin dashboard connected, %d clients", hub.Clients()+1)
		hub.ServeWS(c.Writer, c.Request)
	}
}
