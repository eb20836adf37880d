// Package docs holds the OpenAPI document served under /swagger. Regenerate
// with `swag init -g cmd/api/main.go` after changing handler annotations.
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
		"/health": {
			"get": {
				"tags": [
					"health"
				],
				"summary": "Liveness probe",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/health/ready": {
			"get": {
				"tags": [
					"health"
				],
				"summary": "Readiness probe",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/navigate": {
			"get": {
				"tags": [
					"navigation"
				],
				"summary": "Resolve view",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new account",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Sign in",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Sign out",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/stores": {
			"get": {
				"tags": [
					"stores"
				],
				"summary": "List stores",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"post": {
				"tags": [
					"stores"
				],
				"summary": "Create store",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/stores/{slug}": {
			"get": {
				"tags": [
					"stores"
				],
				"summary": "Get store",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			},
			"patch": {
				"tags": [
					"stores"
				],
				"summary": "Update store settings",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"stores"
				],
				"summary": "Delete store",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/products": {
			"get": {
				"tags": [
					"products"
				],
				"summary": "List products",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			},
			"post": {
				"tags": [
					"products"
				],
				"summary": "Add product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/products/stream": {
			"get": {
				"tags": [
					"products"
				],
				"summary": "Stream products",
				"produces": [
					"text/event-stream"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/products/{id}": {
			"put": {
				"tags": [
					"products"
				],
				"summary": "Update product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"products"
				],
				"summary": "Delete product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/orders": {
			"post": {
				"tags": [
					"orders"
				],
				"summary": "Place order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"201": {
						"description": "Created"
					},
					"409": {
						"description": "Idempotency key in use"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			},
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Order board",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/orders/mine": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "My orders",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/stores/{slug}/orders/stream": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Stream orders",
				"produces": [
					"text/event-stream"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "slug",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/orders/{id}": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Get order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"orders"
				],
				"summary": "Delete order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/orders/{id}/status": {
			"patch": {
				"tags": [
					"orders"
				],
				"summary": "Update order status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
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
	Title:            "QuickOrder Storefront API",
	Description:      "Multi-tenant storefront: stores, catalog, orders and UPI payment links.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
