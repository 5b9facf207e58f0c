// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin setup status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SetupStatus"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register, log in, check setup or log out",
                "parameters": [
                    {"description": "Auth action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AuthRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/admin/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin panel configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/config.AdminConfig"}}
                }
            }
        },
        "/api/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "List site settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Update site settings",
                "parameters": [
                    {"description": "Settings to write", "name": "settings", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/collections": {
            "get": {
                "produces": ["application/json"],
                "tags": ["collections"],
                "summary": "List collection items",
                "parameters": [
                    {"type": "string", "description": "Collection name", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object", "additionalProperties": true}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["collections"],
                "summary": "Save or delete a collection item",
                "parameters": [
                    {"description": "Action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CollectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/leads": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "List leads",
                "parameters": [
                    {"type": "integer", "description": "Page size (default 50, max 500)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Lead"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "Submit a lead",
                "parameters": [
                    {"description": "Form fields", "name": "lead", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LeadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.LeadResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.LeadResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.LeadResponse"}}
                }
            }
        },
        "/api/leads/retry": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "Retry failed notifications",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/leads/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "Get a lead",
                "parameters": [
                    {"type": "integer", "description": "Lead ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Lead"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/media": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Upload an image",
                "parameters": [
                    {"type": "file", "description": "Image", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MediaObject"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/api/media/{key}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Refresh an image link",
                "parameters": [
                    {"type": "string", "description": "Object key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MediaURL"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Delete an image",
                "parameters": [
                    {"type": "string", "description": "Object key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthStatus"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthStatus"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthStatus"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "common.SuccessResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "config.AdminField": {
            "type": "object",
            "properties": {
                "group": {"type": "string"},
                "key": {"type": "string"},
                "label": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "config.AdminConfig": {
            "type": "object",
            "properties": {
                "features": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/config.AdminField"}},
                "siteName": {"type": "string"}
            }
        },
        "handlers.AuthRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["register", "login", "check_setup", "logout"]},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.CollectionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["save", "delete"]},
                "collectionName": {"type": "string"},
                "item": {"type": "object", "additionalProperties": true}
            }
        },
        "handlers.HealthStatus": {
            "type": "object",
            "properties": {
                "services": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "handlers.LeadResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handlers.MediaURL": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handlers.SetupStatus": {
            "type": "object",
            "properties": {
                "isSetup": {"type": "boolean"}
            }
        },
        "models.Lead": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "data": {"type": "object", "additionalProperties": true},
                "id": {"type": "integer"},
                "notify_attempts": {"type": "integer"},
                "notify_status": {"type": "string"},
                "tenant_id": {"type": "string"}
            }
        },
        "models.MediaObject": {
            "type": "object",
            "properties": {
                "contentType": {"type": "string"},
                "key": {"type": "string"},
                "size": {"type": "integer"},
                "url": {"type": "string"}
            }
        },
        "models.TokenResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "expires_in": {"type": "integer"},
                "success": {"type": "boolean"},
                "token": {"type": "string"},
                "token_type": {"type": "string"},
                "username": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "sitecms API",
	Description:      "Site settings, collections, leads and the admin auth gate. Every call is scoped to the site named by the Host header.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
