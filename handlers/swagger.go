package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>sketchbook API</title>
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
  "info": { "title": "sketchbook", "version": "v0.1.0" },
  "components": {
    "securitySchemes": {
      "cookie": { "type": "apiKey", "in": "cookie", "name": "token" },
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" }
    },
    "schemas": {
      "Errors": { "type": "object", "properties": { "errors": { "type": "array", "items": { "type": "object", "properties": { "code": {"type":"string"}, "message": {"type":"string"} } } } } },
      "Drawing": { "type": "object", "properties": { "_id": {"type":"string"}, "userId": {"type":"string"}, "type": {"type":"string"}, "key": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"}, "signedUrl": {"type":"string"} } }
    }
  },
  "paths": {
    "/login": {
      "post": {
        "summary": "Log in with username or email and password; sets the session cookie",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "{\"success\":true}" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/logout": {
      "post": { "summary": "Clear the session cookie", "responses": { "200": { "description": "cookie cleared" } } }
    },
    "/drawings": {
      "get": {
        "summary": "Newest drawing, or the neighbour of beforeId/afterId (beforeId wins)",
        "security": [{"cookie": []}, {"bearer": []}],
        "parameters": [
          { "name": "beforeId", "in": "query", "schema": {"type":"string"} },
          { "name": "afterId", "in": "query", "schema": {"type":"string"} }
        ],
        "responses": { "200": { "description": "{\"data\": Drawing}" }, "400": { "description": "malformed cursor" }, "401": { "description": "no session" }, "404": { "description": "no drawing" } }
      },
      "post": {
        "summary": "Save a JPEG or PNG drawing",
        "security": [{"cookie": []}, {"bearer": []}],
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"drawing":{"type":"string","format":"binary"}}}}}},
        "responses": { "201": { "description": "{\"data\":{\"insertedId\":\"...\"}}" }, "400": { "description": "bad upload" }, "401": { "description": "no session" } }
      }
    },
    "/drawings/{id}": {
      "get": {
        "summary": "One of the caller's drawings",
        "security": [{"cookie": []}, {"bearer": []}],
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": {"type":"string"} }],
        "responses": { "200": { "description": "{\"data\": Drawing}" }, "401": { "description": "no session" }, "404": { "description": "not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
