// Package docs registers the OpenAPI description served under /swagger/.
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
        "/flashcards": {
            "get": {
                "description": "Returns every flashcard known to this instance. Answers 204 when there are none.",
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "List flashcards",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/flashcard.FlashcardDTO"}}},
                    "204": {"description": "No Content"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Stores the flashcard and replicates it to the other instances. The id must be omitted or zero.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "Create flashcard",
                "parameters": [
                    {"description": "Flashcard", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}, "headers": {"Warning": {"type": "string", "description": "Set when the change could not be replicated"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/flashcards/port": {
            "get": {
                "description": "Reports which instance served the request.",
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "Instance information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/flashcard.InstanceInfoResponse"}}
                }
            }
        },
        "/flashcards/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "Get flashcard",
                "parameters": [{"type": "integer", "description": "Flashcard id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "Update flashcard",
                "parameters": [
                    {"type": "integer", "description": "Flashcard id", "name": "id", "in": "path", "required": true},
                    {"description": "Flashcard", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}, "headers": {"Warning": {"type": "string", "description": "Set when the change could not be replicated"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["flashcard-service"],
                "summary": "Delete flashcard",
                "parameters": [{"type": "integer", "description": "Flashcard id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/flashcard.FlashcardDTO"}, "headers": {"Warning": {"type": "string", "description": "Set when the change could not be replicated"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/quizzes": {
            "get": {
                "description": "Answers 204 when no quiz exists.",
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "List quizzes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/quiz.QuizDTO"}}},
                    "204": {"description": "No Content"}
                }
            },
            "post": {
                "description": "The id must be omitted or zero.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "Create quiz",
                "parameters": [
                    {"description": "Quiz", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/quiz.QuizDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/quiz.QuizDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/quizzes/{id}": {
            "get": {
                "description": "Answers 204 when the quiz does not exist.",
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "Get quiz",
                "parameters": [{"type": "integer", "description": "Quiz id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/quiz.QuizDTO"}},
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/quizzes/cards": {
            "get": {
                "description": "Reads flashcard-service behind a circuit breaker. Answers 503 with an empty body while it is unavailable.",
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "List flashcards through quiz-service",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/flashcard.FlashcardDTO"}}},
                    "204": {"description": "No Content"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/quizzes/port": {
            "get": {
                "description": "Reports which flashcard-service instance answered.",
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "Flashcard service instance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/flashcard.InstanceInfoResponse"}},
                    "503": {"description": "Flashcard Service is currently unavailable", "schema": {"type": "string"}}
                }
            }
        },
        "/quizzes/breaker": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quiz-service"],
                "summary": "Circuit breaker state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/quiz.GuardStatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "flashcard.FlashcardDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "question": {"type": "string"},
                "answer": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "flashcard.InstanceInfoResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string"},
                "instance_id": {"type": "string"},
                "port": {"type": "string"}
            }
        },
        "quiz.QuizDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "flashcard_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "quiz.GuardStatusResponse": {
            "type": "object",
            "properties": {
                "guards": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string"},
                            "state": {"type": "string", "enum": ["closed", "open", "half-open"]},
                            "counts": {
                                "type": "object",
                                "properties": {
                                    "requests": {"type": "integer"},
                                    "total_successes": {"type": "integer"},
                                    "total_failures": {"type": "integer"},
                                    "consecutive_successes": {"type": "integer"},
                                    "consecutive_failures": {"type": "integer"}
                                }
                            }
                        }
                    }
                }
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
	Title:            "cardsync API",
	Description:      "Replicated flashcard service and the quiz service that reads it.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
