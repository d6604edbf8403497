package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"todo-service/internal/models"
	"todo-service/internal/repository"
	"todo-service/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// Executor выполняет задачу и ждёт её завершения, см. worker.WorkerPool
type Executor interface {
	Run(ctx context.Context, id string, task func() error) error
}

type AuthService struct {
	users      UserStore
	tokens     *TokenService
	executor   Executor
	bcryptCost int
}

func NewAuthService(users UserStore, tokens *TokenService, executor Executor, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	utils.LogSuccess("AuthService", fmt.Sprintf("Инициализирован сервис аутентификации (bcrypt cost: %d)", bcryptCost))
	return &AuthService{
		users:      users,
		tokens:     tokens,
		executor:   executor,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// Signup регистрирует пользователя и сразу выдаёт ему токен
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, "", ErrValidation
	}

	user, err := s.CreateUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	if req.Email == "" || req.Password == "" {
		return nil, "", ErrValidation
	}

	user, err := s.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.LogWarning("AuthService", "Попытка входа с неизвестным email")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := s.VerifyPassword(ctx, user, req.Password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		utils.LogWarning("AuthService", fmt.Sprintf("Неверный пароль для пользователя: %s", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	utils.LogSuccess("AuthService", fmt.Sprintf("Пользователь вошёл: %s (ID: %s)", user.Username, user.ID))
	return user, token, nil
}

// CreateUser проверяет уникальность имени и email и сохраняет пользователя
// с bcrypt-хешем пароля. Уникальные индексы хранилища ловят гонку двух
// одновременных регистраций.
func (s *AuthService) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		utils.LogWarning("AuthService", fmt.Sprintf("Пользователь уже существует: %s", username))
		return nil, ErrConflict
	}

	hash, err := s.HashPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrConflict
		}
		return nil, err
	}

	utils.LogSuccess("AuthService", fmt.Sprintf("Пользователь зарегистрирован: %s (ID: %s)", user.Username, user.ID))
	return user, nil
}

func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *AuthService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Authenticate проверяет токен и убеждается, что пользователь из него существует
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) HashPassword(ctx context.Context, password string) (string, error) {
	var hash []byte
	err := s.run(ctx, "hash", func() error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		return err
	})
	if err != nil {
		utils.LogError("AuthService", "Ошибка хеширования пароля", err)
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword сравнивает пароль с хешем за постоянное время.
// Несовпадение - это false без ошибки, ошибка означает сбой выполнения.
func (s *AuthService) VerifyPassword(ctx context.Context, user *models.User, candidate string) (bool, error) {
	var mismatch bool
	err := s.run(ctx, "verify", func() error {
		cmpErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate))
		mismatch = cmpErr != nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return !mismatch, nil
}

func (s *AuthService) run(ctx context.Context, id string, task func() error) error {
	if s.executor == nil {
		return task()
	}
	return s.executor.Run(ctx, id, task)
}
