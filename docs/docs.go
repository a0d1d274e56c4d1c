// Package docs is generated by swaggo/swag from the handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange the owner password for a bearer token",
                "parameters": [
                    {"description": "Owner password", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.tokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits": {
            "get": {
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "List habits with their status for a day, done first",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.habitResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "Create a habit and seed today's tracking row",
                "parameters": [
                    {"description": "Habit", "name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createHabitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.habitResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/lookup": {
            "get": {
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "Resolve a habit title to its id and icon",
                "parameters": [
                    {"type": "string", "description": "Habit name", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.HabitLookup"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "Update a habit",
                "parameters": [
                    {"type": "integer", "description": "Habit id", "name": "id", "in": "path", "required": true},
                    {"description": "Habit", "name": "habit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateHabitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.habitResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/habits/{id}/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["habits"],
                "summary": "Flip the done status of a habit for a day",
                "parameters": [
                    {"type": "integer", "description": "Habit id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.habitResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/trackings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Tracking rows of one day",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.HabitTracking"}}}
                }
            }
        },
        "/trackings/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Completed and total habits of one day",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DaySummary"}}
                }
            }
        },
        "/stats/best-streak": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Longest run of consecutive done days, for one habit or all",
                "parameters": [
                    {"type": "integer", "description": "Habit id", "name": "habit_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/stats/completion-rate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Share of done days in a trailing window",
                "parameters": [
                    {"type": "integer", "description": "Habit id, all habits when omitted", "name": "habit_id", "in": "query"},
                    {"type": "integer", "description": "Window length, defaults to 7", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CompletionStats"}}
                }
            }
        },
        "/admin/rollover": {
            "post": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Run the daily rollover now",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "date", "in": "query"},
                    {"type": "boolean", "description": "Run even if the day was already rolled over", "name": "force", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RolloverReport"}}
                }
            }
        },
        "/settings/reminders": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Move the morning and/or evening reminder",
                "parameters": [
                    {"description": "HH:MM per slot, empty keeps the current time", "name": "reminders", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.remindersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.CompletionStats": {
            "type": "object",
            "properties": {
                "completion_rate": {"type": "number"},
                "days": {"type": "integer"},
                "from": {"type": "string"},
                "habit_id": {"type": "integer"},
                "to": {"type": "string"}
            }
        },
        "domain.DaySummary": {
            "type": "object",
            "properties": {
                "completed": {"type": "integer"},
                "completion_rate": {"type": "number"},
                "date": {"type": "string"},
                "total": {"type": "integer"}
            }
        },
        "domain.HabitLookup": {
            "type": "object",
            "properties": {
                "icon": {"type": "string"},
                "icon_kind": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "domain.HabitTracking": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "habit_id": {"type": "integer"},
                "status": {"type": "boolean"},
                "track_id": {"type": "integer"}
            }
        },
        "domain.RolloverReport": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer"},
                "day": {"type": "string"},
                "reset_habits": {"type": "array", "items": {"type": "integer"}},
                "run_id": {"type": "string"},
                "seeded_habits": {"type": "integer"},
                "skipped": {"type": "boolean"}
            }
        },
        "http.createHabitRequest": {
            "type": "object",
            "required": ["description", "name"],
            "properties": {
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "http.habitResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "done": {"type": "boolean"},
                "icon": {"type": "string"},
                "icon_kind": {"type": "string"},
                "id": {"type": "integer"},
                "longest_streak": {"type": "integer"},
                "name": {"type": "string"},
                "streak": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "http.remindersRequest": {
            "type": "object",
            "properties": {
                "evening": {"type": "string"},
                "morning": {"type": "string"}
            }
        },
        "http.tokenRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "password": {"type": "string"}
            }
        },
        "http.tokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "http.updateHabitRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "name": {"type": "string"},
                "streak": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Streak Engine API",
	Description:      "Habit tracking with streaks, a daily rollover and completion statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
