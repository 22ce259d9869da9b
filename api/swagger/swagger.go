package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Civic Report API",
        "description": "Incident reports, document requests and staff notifications for LGUs and barangays.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Incident Reports", "description": "Citizen reports and their status workflow"},
        {"name": "Document Requests", "description": "Barangay document requests and pick-up"},
        {"name": "Notifications", "description": "Staff notification feed"},
        {"name": "Accounts", "description": "LGU and barangay staff sign-up"},
        {"name": "Mobile Users", "description": "Citizen sign-up and ID verification"},
        {"name": "Announcements", "description": "City and global announcements"},
        {"name": "Dashboard", "description": "Status totals per scope"},
        {"name": "Exports", "description": "CSV, PDF and XLSX report exports"},
        {"name": "Workflow", "description": "Status transition tables"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/workflow/transitions": {
            "get": {
                "tags": ["Workflow"],
                "summary": "Status transition tables",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/accounts/register": {
            "post": {
                "tags": ["Accounts"],
                "summary": "Register an LGU or barangay staff account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/mobile/incident-reports": {
            "get": {
                "tags": ["Incident Reports"],
                "summary": "List the caller's own reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Incident Reports"],
                "summary": "File an incident report",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "region", "in": "formData", "type": "string", "required": true},
                    {"name": "province", "in": "formData", "type": "string", "required": true},
                    {"name": "city", "in": "formData", "type": "string", "required": true},
                    {"name": "barangay", "in": "formData", "type": "string", "required": true},
                    {"name": "incident_type", "in": "formData", "type": "string", "required": true},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "media", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/brgy/update-barangay-report-status/{id}": {
            "patch": {
                "tags": ["Incident Reports"],
                "summary": "Move an incident report along its workflow",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "status", "in": "formData", "type": "string", "required": true},
                    {"name": "first_name", "in": "formData", "type": "string"},
                    {"name": "last_name", "in": "formData", "type": "string"},
                    {"name": "proof", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Outside the caller's barangay", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Status changed concurrently", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/brgy/transfer-report/{id}": {
            "patch": {
                "tags": ["Incident Reports"],
                "summary": "Transfer a report to another barangay of the same city",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransferReportRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/brgy/reject-document-request/{id}": {
            "patch": {
                "tags": ["Document Requests"],
                "summary": "Reject a submitted document request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing reason or not submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/brgy/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications for the caller's scope",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "region", "in": "query", "type": "string"},
                    {"name": "province", "in": "query", "type": "string"},
                    {"name": "city", "in": "query", "type": "string"},
                    {"name": "barangay", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/brgy/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Status totals for the caller's scope",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/reports/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export incident reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportReportsRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a signed export",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterAccountRequest": {
            "type": "object",
            "required": ["email", "password", "first_name", "last_name", "role", "region", "province", "city"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "role": {"type": "string", "enum": ["lgu", "barangay"]},
                "region": {"type": "string"},
                "province": {"type": "string"},
                "city": {"type": "string"},
                "barangay": {"type": "string"}
            }
        },
        "TransferReportRequest": {
            "type": "object",
            "required": ["newBarangay"],
            "properties": {
                "newBarangay": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            }
        },
        "RejectDocumentRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            }
        },
        "ExportReportsRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "status": {"type": "string"},
                "city": {"type": "string"},
                "barangay": {"type": "string"}
            }
        },
        "StatusHistoryEntry": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "updated_by": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
