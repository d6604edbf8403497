package handlers

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"todo-service/internal/models"
	"todo-service/internal/utils"
)

const (
	MsgAllFieldsRequired = "All fields are required"
	MsgUserExists        = "User already exists"
	MsgInvalidCreds      = "Invalid credentials"
	MsgTodoFieldsMissing = "Title and description are required"
	MsgTodoNotFound      = "Todo not found"
	MsgInvalidBody       = "Invalid request body"
	MsgServerError       = "Server error"
	MsgRouteNotFound     = "Route not found"
	MsgMethodNotAllowed  = "Method not allowed"
)

// decodeBody разбирает JSON тела запроса. Пустое тело - это пустой объект,
// тогда отсутствие полей ловит проверка обязательных полей.
func decodeBody(ctx *fasthttp.RequestCtx, dest interface{}) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dest)
}

func respond(ctx *fasthttp.RequestCtx, path string, startTime time.Time, statusCode int, body interface{}) {
	utils.WriteJSON(ctx, statusCode, body)
	utils.LogResponse(path, statusCode, time.Since(startTime))
}

func respondMessage(ctx *fasthttp.RequestCtx, path string, startTime time.Time, statusCode int, message string) {
	respond(ctx, path, startTime, statusCode, models.MessageResponse{Message: message})
}

// respondServerError - 500 с деталями ошибки в поле error
func respondServerError(ctx *fasthttp.RequestCtx, path string, startTime time.Time, err error) {
	respond(ctx, path, startTime, fasthttp.StatusInternalServerError, models.ErrorResponse{
		Message: MsgServerError,
		Error:   err.Error(),
	})
}
