// Package docs регистрирует OpenAPI-описание сервиса для swagger UI на /docs/*.
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
        "/register": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {"description": "Данные пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}
                ],
                "responses": {
                    "201": {"description": "Пользователь создан", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ValidationResponse"}},
                    "409": {"description": "Почта уже занята", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Авторизация пользователя",
                "parameters": [
                    {"description": "Учетные данные пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "Успешная авторизация", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ValidationResponse"}},
                    "401": {"description": "Неверный пароль", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Выход",
                "responses": {
                    "200": {"description": "Сессия закрыта", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Данные сессии",
                "responses": {
                    "200": {"description": "Сессия активна", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Сессия истекла или закрыта", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Нет cookie сессии", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/getAllUser": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Список пользователей",
                "responses": {
                    "200": {"description": "Пользователи без хешей паролей", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Невалидный токен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Токен не передан", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/user/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Пользователь по ID",
                "parameters": [
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Пользователь без хеша пароля", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/user/email/{email}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Пользователь по почте",
                "parameters": [
                    {"type": "string", "description": "Почта пользователя", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Пользователь без хеша пароля", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Профиль пользователя",
                "responses": {
                    "200": {"description": "Профиль", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Невалидный токен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Токен не передан", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/updateProfileData": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Обновление профиля",
                "parameters": [
                    {"description": "Новые значения полей", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/update.Request"}}
                ],
                "responses": {
                    "200": {"description": "Профиль обновлён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ValidationResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Почта уже занята", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/deleteProfileData": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Удаление учётной записи",
                "responses": {
                    "200": {"description": "Учётная запись удалена", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/uploads/{name}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["Files"],
                "summary": "Загруженный файл",
                "parameters": [
                    {"type": "string", "description": "Имя файла", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка состояния",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "account.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "msg": {"type": "string"}
            }
        },
        "login.Request": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "usernameOrEmail": {"type": "string"}
            }
        },
        "register.Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "gender": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "update.Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "gender": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/account.FieldError"}},
                "status": {"type": "string"}
            }
        },
        "response.ValidationResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "validation failed"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/account.FieldError"}},
                "status": {"type": "string", "example": "Error"}
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
	Title:            "User Accounts API",
	Description:      "Регистрация, вход и управление профилем пользователя.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
