package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/papyrus/papyrus/backend/notes-api/internal/database"
)

const rootMessage = "Papyrus Notes Backend is running"

// probeTimeout bounds the /test database call so a hung server cannot stall the probe.
const probeTimeout = 5 * time.Second

// RegisterStatusRoutes registers the liveness message and the database probe.
// db may be nil when the service runs on the in-memory store.
func RegisterStatusRoutes(r *gin.Engine, db database.CollectionLister) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": rootMessage})
	})

	r.GET("/test", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		c.JSON(http.StatusOK, database.Probe(ctx, db).Map())
	})
}
