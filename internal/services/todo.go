package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-service/internal/cache"
	"todo-service/internal/models"
	"todo-service/internal/repository"
	"todo-service/internal/utils"
)

type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByOwner(ctx context.Context, userID string) ([]models.Todo, error)
	GetByIDForOwner(ctx context.Context, userID, todoID string) (*models.Todo, error)
	Update(ctx context.Context, userID, todoID string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, userID, todoID string) error
}

// Cache - кеш списков задач. Реализуется cache.RedisCache; промах - cache.ErrMiss.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// TodoService - все операции ограничены владельцем: чужая задача
// неотличима от несуществующей и даёт ErrNotFound.
type TodoService struct {
	todos TodoStore
	cache Cache
}

func NewTodoService(todos TodoStore) *TodoService {
	return &TodoService{todos: todos}
}

func NewTodoServiceWithCache(todos TodoStore, c Cache) *TodoService {
	return &TodoService{todos: todos, cache: c}
}

func (s *TodoService) Create(ctx context.Context, userID string, req models.CreateTodoRequest) (*models.Todo, error) {
	if req.Title == "" || req.Description == "" {
		return nil, ErrValidation
	}

	todo := &models.Todo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		utils.LogError("TodoService", fmt.Sprintf("Ошибка создания задачи для пользователя %s", userID), err)
		return nil, err
	}

	s.invalidate(ctx, userID)
	utils.LogSuccess("TodoService", fmt.Sprintf("Задача %s создана для пользователя %s", todo.ID, userID))
	return todo, nil
}

// List возвращает задачи пользователя, новые первыми.
// Кеш адресуется поколением: список, прочитанный до записи, сохраняется под
// старым поколением и после invalidate уже не читается.
func (s *TodoService) List(ctx context.Context, userID string) ([]models.Todo, error) {
	key, cacheable := s.listKey(ctx, userID)
	if cacheable {
		var todos []models.Todo
		err := s.cache.GetJSON(ctx, key, &todos)
		if err == nil {
			utils.LogDebug("Cache", fmt.Sprintf("HIT: список задач пользователя %s (%d шт.)", userID, len(todos)))
			return todos, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			utils.LogWarning("Cache", fmt.Sprintf("Ошибка чтения из кеша: %v", err))
		}
	}

	todos, err := s.todos.ListByOwner(ctx, userID)
	if err != nil {
		utils.LogError("TodoService", fmt.Sprintf("Ошибка получения задач пользователя %s", userID), err)
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, key, todos, cache.UserTodosTTL); err != nil {
			utils.LogWarning("Cache", fmt.Sprintf("Не удалось сохранить в кеш: %v", err))
		}
	}

	return todos, nil
}

// listKey читает текущее поколение списка. Без поколения кеш не используется.
func (s *TodoService) listKey(ctx context.Context, userID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	var generation int64
	err := s.cache.GetJSON(ctx, cache.UserTodosGenerationKey(userID), &generation)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		utils.LogWarning("Cache", fmt.Sprintf("Ошибка чтения поколения кеша: %v", err))
		return "", false
	}
	return cache.UserTodosKey(userID, generation), true
}

func (s *TodoService) Get(ctx context.Context, userID, todoID string) (*models.Todo, error) {
	todo, err := s.todos.GetByIDForOwner(ctx, userID, todoID)
	if err != nil {
		return nil, translateTodoErr(err)
	}
	return todo, nil
}

// Update применяет только переданные поля. Пустые title/description
// считаются непереданными, completed=false применяется.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.todos.Update(ctx, userID, todoID, patch.Normalize())
	if err != nil {
		return nil, translateTodoErr(err)
	}

	s.invalidate(ctx, userID)
	utils.LogSuccess("TodoService", fmt.Sprintf("Задача %s обновлена", todoID))
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	if err := s.todos.Delete(ctx, userID, todoID); err != nil {
		return translateTodoErr(err)
	}

	s.invalidate(ctx, userID)
	utils.LogSuccess("TodoService", fmt.Sprintf("Задача %s удалена", todoID))
	return nil
}

func (s *TodoService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	generation, err := s.cache.Incr(ctx, cache.UserTodosGenerationKey(userID))
	if err != nil {
		utils.LogWarning("Cache", fmt.Sprintf("Не удалось инвалидировать кеш пользователя %s: %v", userID, err))
		return
	}
	// предыдущее поколение больше не читается
	if err := s.cache.Delete(ctx, cache.UserTodosKey(userID, generation-1)); err != nil {
		utils.LogWarning("Cache", fmt.Sprintf("Не удалось удалить устаревший список пользователя %s: %v", userID, err))
	}
}

func translateTodoErr(err error) error {
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrNotFound
	}
	return err
}
