package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"todo-service/internal/models"
	"todo-service/internal/services"
	"todo-service/internal/utils"
)

type TodoHandler struct {
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// CreateTodo обрабатывает POST /api/todos
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx, user *models.User) {
	const path = "/api/todos"
	startTime := time.Now()
	utils.LogRequest("POST", path, user.ID)

	var req models.CreateTodoRequest
	if err := decodeBody(ctx, &req); err != nil {
		respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgInvalidBody)
		return
	}

	todo, err := h.todoService.Create(context.Background(), user.ID, req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgTodoFieldsMissing)
			return
		}
		respondServerError(ctx, path, startTime, err)
		return
	}

	respond(ctx, path, startTime, fasthttp.StatusCreated, models.TodoResponse{
		Message: "Todo created successfully",
		Todo:    *todo,
	})
}

// GetTodos обрабатывает GET /api/todos - новые задачи первыми
func (h *TodoHandler) GetTodos(ctx *fasthttp.RequestCtx, user *models.User) {
	const path = "/api/todos"
	startTime := time.Now()
	utils.LogRequest("GET", path, user.ID)

	todos, err := h.todoService.List(context.Background(), user.ID)
	if err != nil {
		respondServerError(ctx, path, startTime, err)
		return
	}

	utils.LogSuccess("TodoHandler", fmt.Sprintf("Отправлен список задач: %d шт.", len(todos)))
	respond(ctx, path, startTime, fasthttp.StatusOK, todos)
}

// GetTodoByID обрабатывает GET /api/todos/{id}
func (h *TodoHandler) GetTodoByID(ctx *fasthttp.RequestCtx, user *models.User) {
	todoID := todoIDParam(ctx)
	path := "/api/todos/" + todoID
	startTime := time.Now()
	utils.LogRequest("GET", path, user.ID)

	todo, err := h.todoService.Get(context.Background(), user.ID, todoID)
	if err != nil {
		h.respondTodoError(ctx, path, startTime, err)
		return
	}

	respond(ctx, path, startTime, fasthttp.StatusOK, todo)
}

// UpdateTodo обрабатывает PUT /api/todos/{id}
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx, user *models.User) {
	todoID := todoIDParam(ctx)
	path := "/api/todos/" + todoID
	startTime := time.Now()
	utils.LogRequest("PUT", path, user.ID)

	var patch models.TodoPatch
	if err := decodeBody(ctx, &patch); err != nil {
		respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgInvalidBody)
		return
	}

	todo, err := h.todoService.Update(context.Background(), user.ID, todoID, patch)
	if err != nil {
		h.respondTodoError(ctx, path, startTime, err)
		return
	}

	respond(ctx, path, startTime, fasthttp.StatusOK, models.TodoResponse{
		Message: "Todo updated successfully",
		Todo:    *todo,
	})
}

// DeleteTodo обрабатывает DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx, user *models.User) {
	todoID := todoIDParam(ctx)
	path := "/api/todos/" + todoID
	startTime := time.Now()
	utils.LogRequest("DELETE", path, user.ID)

	if err := h.todoService.Delete(context.Background(), user.ID, todoID); err != nil {
		h.respondTodoError(ctx, path, startTime, err)
		return
	}

	respondMessage(ctx, path, startTime, fasthttp.StatusOK, "Todo deleted successfully")
}

func (h *TodoHandler) respondTodoError(ctx *fasthttp.RequestCtx, path string, startTime time.Time, err error) {
	if errors.Is(err, services.ErrNotFound) {
		respondMessage(ctx, path, startTime, fasthttp.StatusNotFound, MsgTodoNotFound)
		return
	}
	utils.LogError("TodoHandler", "Ошибка операции с задачей", err)
	respondServerError(ctx, path, startTime, err)
}

func todoIDParam(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}
