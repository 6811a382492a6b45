package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Profile API",
        "description": "Student profile, subject history and GPA tracking",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Sign-up, sign-in and token refresh"},
        {"name": "Profile", "description": "The signed-in user's profile document"},
        {"name": "Subjects", "description": "Append-only subject history and live updates"},
        {"name": "Grades", "description": "GPA summary, grade scale and transcripts"},
        {"name": "Observability", "description": "Process metrics"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR, INVALID_EMAIL or WEAK_PASSWORD", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "EMAIL_ALREADY_IN_USE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "PAYLOAD_TOO_LARGE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "INVALID_CREDENTIALS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "MISSING_IDENTITY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Get profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "MISSING_IDENTITY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Profile"],
                "summary": "Update profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProfilePatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "PAYLOAD_TOO_LARGE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/photo": {
            "post": {
                "tags": ["Profile"],
                "summary": "Upload profile photo",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "photo", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Add a subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "STORE_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/done": {
            "post": {
                "tags": ["Subjects"],
                "summary": "Add a completed subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/in-progress": {
            "post": {
                "tags": ["Subjects"],
                "summary": "Add an in-progress subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/stream": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Live subject list",
                "description": "Server-Sent Events. A snapshot event carries all records and the GPA summary.",
                "produces": ["text/event-stream"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Event stream", "schema": {"$ref": "#/definitions/SubjectSnapshot"}}
                }
            }
        },
        "/grades/summary": {
            "get": {
                "tags": ["Grades"],
                "summary": "GPA summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/scale": {
            "get": {
                "tags": ["Grades"],
                "summary": "Grade scale",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/transcript": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download transcript",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/transcript/share": {
            "post": {
                "tags": ["Grades"],
                "summary": "Share transcript",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transcripts/download": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download a shared transcript",
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "System metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK, data is a SystemMetrics", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "password"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "religion": {"type": "string"},
                "birth": {"type": "string"},
                "photo": {"type": "string", "description": "data URI"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "ProfilePatch": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "photo": {"type": "string", "description": "data URI, empty string clears"}
            }
        },
        "CreateSubjectRequest": {
            "type": "object",
            "required": ["subject", "teacher", "credits", "grade", "status"],
            "properties": {
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "credits": {"type": "integer", "enum": [1, 2, 3, 6]},
                "grade": {"type": "string", "enum": ["A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "E", "F"]},
                "status": {"type": "string", "enum": ["completed", "in_progress"]},
                "color": {"type": "string", "description": "#RRGGBB, picked from the palette when empty"}
            }
        },
        "SubjectRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "credits": {"type": "integer"},
                "grade": {"type": "string"},
                "gradePoints": {"type": "number"},
                "status": {"type": "string"},
                "color": {"type": "string"},
                "createdAt": {"type": "integer", "description": "Unix milliseconds"}
            }
        },
        "GradeSummary": {
            "type": "object",
            "properties": {
                "gpa": {"type": "number"},
                "gpaDisplay": {"type": "string"},
                "completed": {"type": "integer"},
                "total": {"type": "integer"},
                "completedCredits": {"type": "integer"},
                "inProgressCredits": {"type": "integer"}
            }
        },
        "SubjectSnapshot": {
            "type": "object",
            "properties": {
                "records": {"type": "array", "items": {"$ref": "#/definitions/SubjectRecord"}},
                "summary": {"$ref": "#/definitions/GradeSummary"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "description": "json name of the rejected input"},
                "rule": {"type": "string"},
                "param": {"type": "string"}
            }
        },
        "SystemMetrics": {
            "type": "object",
            "properties": {
                "cache_hit_ratio": {"type": "number"},
                "cache_hits": {"type": "integer"},
                "cache_misses": {"type": "integer"},
                "requests_total": {"type": "integer"},
                "average_request_duration_ms": {"type": "number"},
                "subjects_created": {"type": "integer"},
                "transcripts_rendered": {"type": "integer"},
                "auth_rejected": {"type": "integer"},
                "open_streams": {"type": "integer"},
                "goroutines": {"type": "integer"},
                "uptime_seconds": {"type": "integer"},
                "generated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object", "description": "cache_hit on grade summary, request_id on errors, total on lists"}
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
