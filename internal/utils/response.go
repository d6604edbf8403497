package utils

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// WriteJSON пишет тело ответа в JSON с заданным статусом
func WriteJSON(ctx *fasthttp.RequestCtx, statusCode int, body interface{}) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		LogError("Response", "Ошибка кодирования ответа", err)
	}
}

// WriteMessage - ответ вида {"message": "..."}
func WriteMessage(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	WriteJSON(ctx, statusCode, map[string]string{"message": message})
}
