package middleware

import (
	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
	corsAllowHeaders = "Content-Type,Authorization"
)

// CORS разрешает запросы фронтенда с другого origin и сам отвечает на preflight
func CORS(allowOrigin string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, allowOrigin)
		if allowOrigin != "*" {
			ctx.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
		}

		if ctx.IsOptions() {
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowMethods, corsAllowMethods)
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		next(ctx)
	}
}
