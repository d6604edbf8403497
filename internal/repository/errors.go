package repository

import "errors"

var (
	ErrUserExists   = errors.New("пользователь с таким именем или email уже существует")
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrTodoNotFound = errors.New("задача не найдена")
)
