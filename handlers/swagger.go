package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the notes API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>papyrus-notes Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const noteSchema = `{"type":"object","properties":{"id":{"type":"string"},"title":{"type":"string"},"content":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"color":{"type":"string","nullable":true},"is_pinned":{"type":"boolean"},"mood":{"type":"string","nullable":true},"created_at":{"type":"string","format":"date-time"},"updated_at":{"type":"string","format":"date-time"}}}`

const errorSchema = `{"type":"object","properties":{"error":{"type":"string"}}}`

// OpenAPI document for the note endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "papyrus-notes", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Note": ` + noteSchema + `,
      "Error": ` + errorSchema + `
    }
  },
  "paths": {
    "/": { "get": { "summary": "Service banner", "responses": { "200": { "description": "running message" } } } },
    "/test": { "get": { "summary": "Database connectivity probe", "responses": { "200": { "description": "backend, database status and collections when connected" } } } },
    "/api/notes": {
      "get": {
        "summary": "List notes, pinned first then oldest first",
        "parameters": [
          { "name": "tag", "in": "query", "schema": { "type": "string" } },
          { "name": "q", "in": "query", "description": "case-insensitive search in title or content", "schema": { "type": "string" } },
          { "name": "pinned", "in": "query", "schema": { "type": "boolean" } }
        ],
        "responses": {
          "200": { "description": "notes", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Note" } } } } },
          "400": { "description": "invalid query" },
          "500": { "description": "store failure", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Error" } } } }
        }
      },
      "post": {
        "summary": "Create a note",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Note" } } } },
        "responses": { "200": { "description": "id of the new note" }, "400": { "description": "invalid body" }, "500": { "description": "store failure" } }
      }
    },
    "/api/notes/{note_id}": {
      "parameters": [ { "name": "note_id", "in": "path", "required": true, "schema": { "type": "string" } } ],
      "patch": {
        "summary": "Overwrite top-level fields of a note",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object" } } } },
        "responses": { "200": { "description": "ok" }, "400": { "description": "invalid id or body" }, "404": { "description": "Note not found" }, "500": { "description": "store failure" } }
      },
      "delete": {
        "summary": "Delete a note",
        "responses": { "200": { "description": "ok" }, "400": { "description": "invalid id" }, "404": { "description": "Note not found" }, "500": { "description": "store failure" } }
      }
    },
    "/api/notes/export": {
      "post": { "summary": "Upload a JSON snapshot of all notes and return a presigned URL", "responses": { "200": { "description": "key, url and count" }, "503": { "description": "object storage not configured" }, "500": { "description": "export failed" } } }
    },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
