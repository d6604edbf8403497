package handlers

import (
	"fmt"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"todo-service/internal/middleware"
	"todo-service/internal/models"
	"todo-service/internal/utils"
)

// NewRouter собирает таблицу маршрутов. Все /api/todos закрыты RequireAuth,
// /api/auth открыты.
func NewRouter(authHandler *AuthHandler, todoHandler *TodoHandler, guard *middleware.AuthMiddleware, corsOrigin string) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", HealthHandler)

	api := r.Group("/api")
	api.POST("/auth/signup", authHandler.SignupHandler)
	api.POST("/auth/login", authHandler.LoginHandler)

	api.POST("/todos", guard.RequireAuth(todoHandler.CreateTodo))
	api.GET("/todos", guard.RequireAuth(todoHandler.GetTodos))
	api.GET("/todos/{id}", guard.RequireAuth(todoHandler.GetTodoByID))
	api.PUT("/todos/{id}", guard.RequireAuth(todoHandler.UpdateTodo))
	api.DELETE("/todos/{id}", guard.RequireAuth(todoHandler.DeleteTodo))

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		utils.WriteMessage(ctx, fasthttp.StatusNotFound, MsgRouteNotFound)
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		utils.WriteMessage(ctx, fasthttp.StatusMethodNotAllowed, MsgMethodNotAllowed)
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, recovered interface{}) {
		utils.LogError("Router", fmt.Sprintf("Паника при обработке %s %s", ctx.Method(), ctx.Path()), fmt.Errorf("%v", recovered))
		ctx.ResetBody()
		utils.WriteJSON(ctx, fasthttp.StatusInternalServerError, models.ErrorResponse{
			Message: MsgServerError,
			Error:   fmt.Sprint(recovered),
		})
	}

	utils.LogSuccess("Router", "Маршруты зарегистрированы")
	return middleware.CORS(corsOrigin, r.Handler)
}

func HealthHandler(ctx *fasthttp.RequestCtx) {
	utils.WriteJSON(ctx, fasthttp.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
