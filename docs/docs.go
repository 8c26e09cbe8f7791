// Package docs provides the OpenAPI document served at /swagger.
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
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Create a user account",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate and open a session",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Close the current session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/switch-organization": {
            "post": {
                "tags": ["auth"],
                "summary": "Change the session's active organization",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Describe the resolved caller identity",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/tickets": {
            "get": {
                "tags": ["tickets"],
                "summary": "List tickets in the active organization",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["tickets"],
                "summary": "Create a ticket",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/tickets/{id}": {
            "get": {
                "tags": ["tickets"],
                "summary": "Fetch a ticket",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "tags": ["tickets"],
                "summary": "Update a ticket",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["tickets"],
                "summary": "Delete a ticket",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/tickets/{id}/audits": {
            "get": {
                "tags": ["tickets"],
                "summary": "List a ticket's audit trail",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers": {
            "get": {
                "tags": ["customers"],
                "summary": "List customers",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["customers"],
                "summary": "Create a customer",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/statuses": {
            "get": {
                "tags": ["meta"],
                "summary": "List ticket statuses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["meta"],
                "summary": "Create a ticket status",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/priorities": {
            "get": {
                "tags": ["meta"],
                "summary": "List ticket priorities",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["meta"],
                "summary": "Create a ticket priority",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api-keys": {
            "get": {
                "tags": ["api-keys"],
                "summary": "List the caller's API keys",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["api-keys"],
                "summary": "Mint an API key",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/organizations": {
            "post": {
                "tags": ["organizations"],
                "summary": "Create an organization",
                "responses": {"201": {"description": "Created"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "SupportDesk API",
	Description:      "Multi-tenant helpdesk backend with row-level tenant isolation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
