// Package docs registers the OpenAPI description of the portal with swag.
// Regenerate with: swag init -g cmd/portal/main.go
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
        "/admin": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login view",
                "parameters": [
                    {"type": "string", "description": "Location to return to after login", "name": "from", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginView"}},
                    "303": {"description": "See Other"}
                }
            }
        },
        "/admin/login": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Administrator login",
                "parameters": [
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true},
                    {"type": "string", "description": "Location to return to", "name": "from", "in": "formData"}
                ],
                "responses": {
                    "303": {"description": "See Other"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.loginView"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.loginView"}}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Administrator logout",
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/admin/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current administrator",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/courses/upload-image": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["courses"],
                "summary": "Upload a course image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/contact": {
            "get": {
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Contact profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Contact"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Save the contact profile",
                "parameters": [
                    {"description": "Contact profile", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Contact"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Contact"}}}
            }
        },
        "/admin/regulation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["regulation"],
                "summary": "Regulation document",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List administrator accounts",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create an administrator account",
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/users/{id}/reset-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Set a new password",
                "parameters": [
                    {"type": "integer", "description": "Account id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/{view}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Public views",
                "parameters": [
                    {"type": "string", "description": "news, events, courses, services, faq, contact, regulation or admissions", "name": "view", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.Contact": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "emails": {"type": "array", "items": {"type": "string"}},
                "hero_image": {"type": "string"},
                "phones": {"type": "array", "items": {"type": "string"}},
                "schedule": {"type": "string"},
                "social_text": {"type": "string"},
                "socials": {"type": "array", "items": {"$ref": "#/definitions/domain.Social"}}
            }
        },
        "domain.Social": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handler.loginView": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "from": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "UNIDET portal",
	Description:      "Public site views and administrator panel of the UNIDET school website.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
