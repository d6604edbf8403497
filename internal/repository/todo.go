package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todo-service/internal/models"
	"todo-service/internal/utils"
)

const todoColumns = `id, user_id, title, description, completed, created_at`

type TodoRepository struct {
	db *pgxpool.Pool
}

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	utils.LogSuccess("TodoRepository", "Инициализирован репозиторий задач (PostgreSQL)")
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, title, description, completed, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING ` + todoColumns

	utils.LogDB("CREATE TODO", fmt.Sprintf("Создание задачи для пользователя %s", todo.UserID))

	row := r.db.QueryRow(ctx, query, newID(), todo.UserID, todo.Title, todo.Description)
	if err := scanTodo(row, todo); err != nil {
		return fmt.Errorf("ошибка создания задачи: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, userID string) ([]models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	utils.LogDB("LIST TODOS", fmt.Sprintf("Список задач пользователя %s", userID))

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var todo models.Todo
		if err := scanTodo(rows, &todo); err != nil {
			return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка задач: %w", err)
	}

	return todos, nil
}

func (r *TodoRepository) GetByIDForOwner(ctx context.Context, userID, todoID string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	utils.LogDB("GET TODO", fmt.Sprintf("Поиск задачи %s", todoID))

	var todo models.Todo
	if err := scanTodo(r.db.QueryRow(ctx, query, todoID, userID), &todo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return &todo, nil
}

// Update меняет только переданные поля одним UPDATE, NULL-параметр оставляет столбец как есть
func (r *TodoRepository) Update(ctx context.Context, userID, todoID string, patch models.TodoPatch) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET title = COALESCE($3::text, title),
		    description = COALESCE($4::text, description),
		    completed = COALESCE($5::boolean, completed)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	utils.LogDB("UPDATE TODO", fmt.Sprintf("Обновление задачи %s", todoID))

	var todo models.Todo
	row := r.db.QueryRow(ctx, query, todoID, userID, patch.Title, patch.Description, patch.Completed)
	if err := scanTodo(row, &todo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return &todo, nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	utils.LogDB("DELETE TODO", fmt.Sprintf("Удаление задачи %s", todoID))

	result, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, todoID, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

func scanTodo(row pgx.Row, todo *models.Todo) error {
	return row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.CreatedAt,
	)
}
