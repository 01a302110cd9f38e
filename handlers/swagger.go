package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the Micropub server.
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
    <title>micropub API</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "micropub", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" }, "error_description": { "type": "string" } } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/micropub": {
      "get": {
        "summary": "Query configuration, post source or syndication targets",
        "parameters": [
          { "name": "q", "in": "query", "required": true, "schema": { "type": "string", "enum": ["config", "source", "syndicate-to"] } },
          { "name": "url", "in": "query", "schema": { "type": "string" } },
          { "name": "properties[]", "in": "query", "schema": { "type": "array", "items": { "type": "string" } } }
        ],
        "responses": { "200": { "description": "query answer" }, "400": { "description": "invalid_request" }, "401": { "description": "unauthorized" } }
      },
      "post": {
        "summary": "Create, update, delete or undelete a post",
        "requestBody": { "content": {
          "application/json": { "schema": { "type": "object", "properties": { "type": { "type": "array", "items": { "type": "string" } }, "properties": { "type": "object" }, "action": { "type": "string" }, "url": { "type": "string" }, "replace": { "type": "object" }, "add": { "type": "object" }, "delete": {} } } },
          "application/x-www-form-urlencoded": { "schema": { "type": "object", "properties": { "h": { "type": "string" }, "action": { "type": "string" }, "url": { "type": "string" } } } }
        } },
        "responses": { "200": { "description": "updated, deleted or undeleted" }, "202": { "description": "created; Location holds the post URL" }, "400": { "description": "invalid_request" }, "403": { "description": "insufficient_scope" }, "404": { "description": "not_found" } }
      }
    },
    "/media": {
      "get": { "summary": "Last uploaded file (q=last)", "responses": { "200": { "description": "media record" } } },
      "post": { "summary": "Upload a file", "requestBody": { "content": { "multipart/form-data": { "schema": { "type": "object", "properties": { "file": { "type": "string", "format": "binary" } } } } } }, "responses": { "201": { "description": "uploaded; Location holds the file URL" }, "400": { "description": "invalid_request" } } }
    },
    "/token": {
      "get": { "summary": "Verify the bearer token", "responses": { "200": { "description": "me, client_id and scope" }, "401": { "description": "unauthorized" } } },
      "post": { "summary": "Revoke a token (action=revoke)", "security": [], "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": { "type": "object", "properties": { "action": { "type": "string" }, "token": { "type": "string" } } } } } }, "responses": { "200": { "description": "revoked" }, "400": { "description": "invalid_request" }, "503": { "description": "revocation not configured" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
