// Package swagger holds the OpenAPI document served at /swagger/doc.json.
package swagger

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
        "/detect/readings": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Scores a batch of sensor readings with the Modified Z-Score method and flags anomalies.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "detect"
                ],
                "summary": "Score sensor readings",
                "parameters": [
                    {
                        "description": "Batch of sensor readings",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/detect.ScoreRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/detect.ScoreResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/server.Problem"
                        }
                    }
                }
            }
        },
        "/detect/config": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the active detection configuration.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "detect"
                ],
                "summary": "Get detection configuration",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/detect.ConfigResponse"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns service health status with version information.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/server.HealthResponse"
                        }
                    }
                }
            }
        },
        "/modules": {
            "get": {
                "description": "Returns all registered modules with their metadata.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "List modules",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/server.ModuleResponse"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "detect.ScoreRequest": {
            "type": "object",
            "properties": {
                "readings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/sensor.Reading"
                    }
                }
            }
        },
        "detect.ScoreResponse": {
            "type": "object",
            "properties": {
                "batch_id": {
                    "type": "string"
                },
                "total_readings": {
                    "type": "integer"
                },
                "anomalies_detected": {
                    "type": "integer"
                },
                "results": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/sensor.ScoreResult"
                    }
                }
            }
        },
        "detect.ConfigResponse": {
            "type": "object",
            "properties": {
                "threshold": {
                    "type": "number"
                },
                "metrics": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "max_batch_size": {
                    "type": "integer"
                }
            }
        },
        "sensor.Reading": {
            "type": "object",
            "properties": {
                "sensor_id": {
                    "type": "string"
                },
                "temperature": {
                    "type": "number"
                },
                "vibration": {
                    "type": "number"
                }
            }
        },
        "sensor.ScoreResult": {
            "type": "object",
            "properties": {
                "sensor_id": {
                    "type": "string"
                },
                "temperature": {
                    "type": "number"
                },
                "vibration": {
                    "type": "number"
                },
                "is_anomaly": {
                    "type": "boolean"
                },
                "anomaly_scores": {
                    "type": "object",
                    "properties": {
                        "temperature": {
                            "type": "number"
                        },
                        "vibration": {
                            "type": "number"
                        }
                    }
                },
                "anomalous_metrics": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "ok"
                },
                "service": {
                    "type": "string",
                    "example": "pulsegrid"
                },
                "version": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "server.ModuleResponse": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string",
                    "example": "detect"
                },
                "version": {
                    "type": "string",
                    "example": "0.1.0"
                },
                "description": {
                    "type": "string",
                    "example": "Modified Z-Score anomaly scoring"
                }
            }
        },
        "server.Problem": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                },
                "instance": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "PulseGrid API",
	Description:      "IoT sensor anomaly detection service API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
