package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"todo-service/internal/models"
	"todo-service/internal/services"
	"todo-service/internal/utils"
)

const (
	MsgTokenRequired = "Authentication token is required"
	MsgInvalidToken  = "Invalid token"
	MsgUserNotFound  = "User not found"
)

// AuthenticatedHandler получает пользователя, установленного по токену, явным аргументом
type AuthenticatedHandler func(ctx *fasthttp.RequestCtx, user *models.User)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	utils.LogSuccess("Middleware", "Инициализирован middleware авторизации")
	return &AuthMiddleware{auth: auth}
}

// RequireAuth - проверка Bearer-токена перед защищённым обработчиком.
// Без токена тело запроса не читается.
func (m *AuthMiddleware) RequireAuth(next AuthenticatedHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		startTime := time.Now()
		path := string(ctx.Path())

		token, ok := BearerToken(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
		if !ok {
			utils.LogWarning("Middleware", "Отсутствует токен в заголовке Authorization")
			m.reject(ctx, path, startTime, MsgTokenRequired)
			return
		}

		// RequestCtx как context.Context завершается при остановке сервера,
		// а не по окончании запроса, поэтому в хранилище идёт свой контекст
		user, err := m.auth.Authenticate(context.Background(), token)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				utils.LogWarning("Middleware", "Пользователь из токена не найден")
				m.reject(ctx, path, startTime, MsgUserNotFound)
				return
			}
			utils.LogWarning("Middleware", fmt.Sprintf("Невалидный токен: %v", err))
			m.reject(ctx, path, startTime, MsgInvalidToken)
			return
		}

		utils.LogDebug("Middleware", fmt.Sprintf("Аутентифицирован пользователь: %s", user.ID))
		next(ctx, user)
	}
}

func (m *AuthMiddleware) reject(ctx *fasthttp.RequestCtx, path string, startTime time.Time, message string) {
	utils.WriteMessage(ctx, fasthttp.StatusUnauthorized, message)
	utils.LogResponse(path, fasthttp.StatusUnauthorized, time.Since(startTime))
}

// BearerToken извлекает токен из значения "Bearer <token>"
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
