package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Dashboard API",
        "description": "Attendance metrics and admin configuration for the dashboard front end",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendance", "description": "Dashboard series"},
        {"name": "Admin", "description": "Session and dashboard configuration"},
        {"name": "Health", "description": "Liveness and readiness"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance dashboard",
                "parameters": [
                    {"name": "timeRange", "in": "query", "type": "string", "enum": ["today", "week", "month", "quarter"], "default": "today"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Unknown timeRange", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/attendance/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download one dashboard series",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "timeRange", "in": "query", "type": "string", "enum": ["today", "week", "month", "quarter"], "default": "today"},
                    {"name": "series", "in": "query", "required": true, "type": "string", "enum": ["checkinTrend", "lateDistribution", "overtimeData", "batchDistribution", "attendanceStats"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Admin login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session cookie set", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/admin/logout": {
            "post": {
                "tags": ["Admin"],
                "summary": "Admin logout",
                "responses": {"200": {"description": "Session cookie cleared", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/admin/session": {
            "get": {
                "tags": ["Admin"],
                "summary": "Current admin session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/api/admin/config": {
            "get": {
                "tags": ["Admin"],
                "summary": "List dimensions with nested cards and charts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Change dashboard configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfigMutationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Applied", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid payload or type", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Row not found", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Duplicate dimension key", "schema": {"$ref": "#/definitions/Envelope"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ConfigMutationRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["dimension", "card", "chart", "update_dimension", "update_card", "update_chart", "delete_dimension", "delete_card", "delete_chart"]},
                "data": {"type": "object"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "id": {"type": "integer"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
