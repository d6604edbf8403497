package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"todo-service/internal/models"
	"todo-service/internal/utils"
)

// MemoryStore - хранилище в памяти процесса для разработки и тестов.
// Одна блокировка на всё хранилище даёт атомарность каждой операции.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	todos map[string]models.Todo
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	utils.LogSuccess("MemoryStore", "Инициализировано хранилище в памяти")
	return &MemoryStore{
		users: make(map[string]models.User),
		todos: make(map[string]models.Todo),
		now:   time.Now,
	}
}

// SetClock подменяет источник времени для created_at
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

func (s *MemoryStore) Todos() *MemoryTodoRepository {
	return &MemoryTodoRepository{store: s}
}

func (s *MemoryStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrUserExists
		}
	}

	user.ID = newID()
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type MemoryTodoRepository struct {
	store *MemoryStore
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo *models.Todo) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	todo.ID = newID()
	todo.Completed = false
	todo.CreatedAt = s.now()
	s.todos[todo.ID] = *todo
	return nil
}

func (r *MemoryTodoRepository) ListByOwner(_ context.Context, userID string) ([]models.Todo, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]models.Todo, 0)
	for _, todo := range s.todos {
		if todo.UserID == userID {
			todos = append(todos, todo)
		}
	}

	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID > todos[j].ID
	})
	return todos, nil
}

func (r *MemoryTodoRepository) GetByIDForOwner(_ context.Context, userID, todoID string) (*models.Todo, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, ok := s.todos[todoID]
	if !ok || todo.UserID != userID {
		return nil, ErrTodoNotFound
	}
	return &todo, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, userID, todoID string, patch models.TodoPatch) (*models.Todo, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[todoID]
	if !ok || todo.UserID != userID {
		return nil, ErrTodoNotFound
	}

	todo = patch.Apply(todo)
	s.todos[todoID] = todo
	return &todo, nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, userID, todoID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[todoID]
	if !ok || todo.UserID != userID {
		return ErrTodoNotFound
	}
	delete(s.todos, todoID)
	return nil
}
