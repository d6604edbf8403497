package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("ошибка валидации")
	ErrConflict     = errors.New("пользователь уже существует")
	ErrUnauthorized = errors.New("не авторизован")
	ErrNotFound     = errors.New("задача не найдена")

	ErrInvalidCredentials = fmt.Errorf("%w: неверный email или пароль", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: невалидный токен", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("%w: пользователь не найден", ErrUnauthorized)
)
