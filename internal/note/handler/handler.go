package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/service"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/logger"
)

// RegisterNoteRoutes mounts the notes API under /api/notes.
func RegisterNoteRoutes(r *gin.Engine, svc service.Service) {
	g := r.Group("/api/notes")

	g.POST("", func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil || !isJSONObject(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
			return
		}
		var req note.CreateRequest
		if err := binding.JSON.BindBody(raw, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	g.GET("", func(c *gin.Context) {
		f := note.Filter{Tag: c.Query("tag"), Query: c.Query("q")}
		if v, ok := c.GetQuery("pinned"); ok {
			b, ok := parseBool(v)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "pinned must be a boolean"})
				return
			}
			f.Pinned = &b
		}
		notes, err := svc.List(c.Request.Context(), f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	})

	g.PATCH("/:note_id", func(c *gin.Context) {
		var p note.Patch
		if err := c.ShouldBindJSON(&p); err != nil || p == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
			return
		}
		if err := svc.Update(c.Request.Context(), c.Param("note_id"), p); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	g.DELETE("/:note_id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("note_id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	g.POST("/export", func(c *gin.Context) {
		snap, err := svc.Export(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	})
}

// writeError is the single place service errors become HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
	case errors.Is(err, service.ErrNoSnapshots):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func isJSONObject(raw []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}

// parseBool accepts the usual query-string spellings of a boolean.
func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, true
	case "false", "0", "no", "off", "f", "n":
		return false, true
	}
	return false, false
}
