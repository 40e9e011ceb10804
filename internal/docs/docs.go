// Package docs registers the Swagger document served at /swagger.
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "User registered"}, "400": {"description": "Invalid input"}, "409": {"description": "Email already registered"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "Tokens"}, "401": {"description": "Invalid credentials"}, "423": {"description": "Account locked"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh tokens", "responses": {"200": {"description": "Tokens"}, "401": {"description": "Invalid token"}}}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Get the profile", "responses": {"200": {"description": "Profile"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Update the profile", "responses": {"200": {"description": "Profile"}}}
        },
        "/wallets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "List wallets", "responses": {"200": {"description": "Paginated wallets"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "Create a wallet", "responses": {"201": {"description": "Wallet created"}}}
        },
        "/wallets/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "Get a wallet", "responses": {"200": {"description": "Wallet"}, "404": {"description": "Wallet not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "Rename a wallet", "responses": {"200": {"description": "Wallet"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "Delete a wallet and its transactions", "responses": {"200": {"description": "Deleted transaction count"}, "409": {"description": "Concurrent modification"}}}
        },
        "/wallets/{id}/archive": {"put": {"security": [{"BearerAuth": []}], "tags": ["wallets"], "summary": "Archive or restore a wallet", "responses": {"200": {"description": "Wallet"}}}},
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List transactions", "responses": {"200": {"description": "Paginated transactions"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Add a transaction", "responses": {"201": {"description": "Transaction created"}, "422": {"description": "Insufficient funds"}}}
        },
        "/transactions/bulk-delete": {"post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete transactions", "responses": {"200": {"description": "Delete result"}}}},
        "/transactions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get a transaction", "responses": {"200": {"description": "Transaction"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete a transaction", "responses": {"204": {"description": "Deleted"}}}
        },
        "/savings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["savings"], "summary": "List savings pockets", "responses": {"200": {"description": "Paginated pockets"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["savings"], "summary": "Create a savings pocket", "responses": {"201": {"description": "Pocket created"}}}
        },
        "/savings/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["savings"], "summary": "Get a savings pocket", "responses": {"200": {"description": "Pocket"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["savings"], "summary": "Delete a savings pocket", "responses": {"204": {"description": "Deleted"}}}
        },
        "/savings/{id}/adjust": {"post": {"security": [{"BearerAuth": []}], "tags": ["savings"], "summary": "Adjust a savings pocket", "responses": {"200": {"description": "Pocket"}, "422": {"description": "Amount would go below zero"}}}},
        "/reports/summary": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Dashboard summary", "responses": {"200": {"description": "Summary"}}}},
        "/stream": {"get": {"security": [{"BearerAuth": []}], "tags": ["stream"], "summary": "Live collection updates", "produces": ["text/event-stream"], "responses": {"200": {"description": "event stream"}}}},
        "/internal/digest/run": {"post": {"tags": ["internal"], "summary": "Run the daily digest", "responses": {"200": {"description": "Run summary"}, "401": {"description": "Invalid API key"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Danaku API",
	Description:      "Danaku keeps personal wallets, transactions and savings pockets consistent and sends a daily summary email.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
