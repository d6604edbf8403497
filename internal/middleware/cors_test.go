package middleware

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestCORS(t *testing.T) {
	var reached bool
	handler := CORS("", func(ctx *fasthttp.RequestCtx) {
		reached = true
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	preflight := &fasthttp.RequestCtx{}
	preflight.Request.Header.SetMethod(fasthttp.MethodOptions)
	preflight.Request.SetRequestURI("/api/todos")
	handler(preflight)

	if reached {
		t.Error("preflight не должен доходить до обработчика")
	}
	if preflight.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", preflight.Response.StatusCode())
	}
	if got := string(preflight.Response.Header.Peek(fasthttp.HeaderAccessControlAllowHeaders)); got != corsAllowHeaders {
		t.Errorf("Allow-Headers = %q", got)
	}

	get := &fasthttp.RequestCtx{}
	get.Request.Header.SetMethod(fasthttp.MethodGet)
	get.Request.SetRequestURI("/api/todos")
	handler(get)

	if !reached {
		t.Error("GET должен дойти до обработчика")
	}
	if got := string(get.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
