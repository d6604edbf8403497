package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"todo-service/internal/models"
	"todo-service/internal/utils"
)

const pgUniqueViolation = "23505"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	utils.LogSuccess("UserRepository", "Инициализирован репозиторий пользователей (PostgreSQL)")
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`

	utils.LogDB("CREATE USER", fmt.Sprintf("Создание пользователя: %s", user.Username))

	user.ID = newID()
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		user.ID = ""
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			utils.LogWarning("UserRepository", "Пользователь уже существует: %s", user.Username)
			return ErrUserExists
		}
		utils.LogError("UserRepository", fmt.Sprintf("Ошибка создания пользователя %s", user.Username), err)
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	utils.LogSuccess("UserRepository", fmt.Sprintf("Пользователь создан: %s (ID: %s)", user.Username, user.ID))
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	utils.LogDB("GET USER", "Поиск пользователя по email")
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`
	utils.LogDB("GET USER", fmt.Sprintf("Поиск пользователя: %s", id))
	return r.getOne(ctx, query, id)
}

// ExistsByUsernameOrEmail проверяет, занято ли имя или email
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	if err := r.db.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки уникальности пользователя: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return user, nil
}
