package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"todo-service/internal/utils"
)

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет подписанные HS256 токены сессии.
// Токен не хранится на сервере: смена секрета инвалидирует все выданные токены.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	utils.LogSuccess("TokenService", fmt.Sprintf("Инициализирован сервис токенов (TTL: %v)", ttl))
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		// срок действия проверяется вручную относительно s.now
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// SetClock подменяет источник текущего времени
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(userID string) (string, error) {
	utils.LogDebug("TokenService", fmt.Sprintf("Генерация JWT токена для пользователя: %s", userID))

	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		utils.LogError("TokenService", "Ошибка подписи токена", err)
		return "", err
	}
	return signedToken, nil
}

// Verify возвращает id пользователя из токена. Существование пользователя
// здесь не проверяется. Токен отвергается начиная с момента exp включительно.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		utils.LogWarning("TokenService", "Невалидный токен: %v", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		utils.LogWarning("TokenService", "Токен истёк для пользователя: %s", claims.UserID)
		return "", fmt.Errorf("%w: токен истёк", ErrInvalidToken)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: в токене нет userId", ErrInvalidToken)
	}

	return claims.UserID, nil
}
