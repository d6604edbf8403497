package models

import "time"

type Todo struct {
	ID          string    `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Completed   bool      `json:"completed" bson:"completed"`
	UserID      string    `json:"user" bson:"user"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TodoPatch - частичное обновление. nil означает "поле не передано",
// поэтому completed=false отличается от отсутствующего completed.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Normalize отбрасывает пустые title/description: пустая строка трактуется
// как отсутствующее поле, а не как очистка. Для completed такого нет.
func (p TodoPatch) Normalize() TodoPatch {
	if p.Title != nil && *p.Title == "" {
		p.Title = nil
	}
	if p.Description != nil && *p.Description == "" {
		p.Description = nil
	}
	return p
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply применяет переданные поля к todo и возвращает его копию.
func (p TodoPatch) Apply(todo Todo) Todo {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.Description != nil {
		todo.Description = *p.Description
	}
	if p.Completed != nil {
		todo.Completed = *p.Completed
	}
	return todo
}

type TodoResponse struct {
	Message string `json:"message"`
	Todo    Todo   `json:"todo"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
