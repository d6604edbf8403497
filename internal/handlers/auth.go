package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"todo-service/internal/models"
	"todo-service/internal/services"
	"todo-service/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	utils.LogSuccess("AuthHandler", "Инициализирован обработчик аутентификации")
	return &AuthHandler{authService: authService}
}

// SignupHandler - POST /api/auth/signup
func (h *AuthHandler) SignupHandler(ctx *fasthttp.RequestCtx) {
	const path = "/api/auth/signup"
	startTime := time.Now()
	utils.LogRequest("POST", path, "anonymous")

	var req models.SignupRequest
	if err := decodeBody(ctx, &req); err != nil {
		utils.LogWarning("AuthHandler", fmt.Sprintf("Ошибка парсинга JSON: %v", err))
		respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgInvalidBody)
		return
	}

	user, token, err := h.authService.Signup(context.Background(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgAllFieldsRequired)
		case errors.Is(err, services.ErrConflict):
			respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgUserExists)
		default:
			utils.LogError("AuthHandler", "Ошибка регистрации", err)
			respondServerError(ctx, path, startTime, err)
		}
		return
	}

	respond(ctx, path, startTime, fasthttp.StatusCreated, models.AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    user.Response(),
	})
}

// LoginHandler - POST /api/auth/login
func (h *AuthHandler) LoginHandler(ctx *fasthttp.RequestCtx) {
	const path = "/api/auth/login"
	startTime := time.Now()
	utils.LogRequest("POST", path, "anonymous")

	var req models.LoginRequest
	if err := decodeBody(ctx, &req); err != nil {
		utils.LogWarning("AuthHandler", fmt.Sprintf("Ошибка парсинга JSON: %v", err))
		respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgInvalidBody)
		return
	}

	user, token, err := h.authService.Login(context.Background(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondMessage(ctx, path, startTime, fasthttp.StatusBadRequest, MsgAllFieldsRequired)
		case errors.Is(err, services.ErrInvalidCredentials):
			respondMessage(ctx, path, startTime, fasthttp.StatusUnauthorized, MsgInvalidCreds)
		default:
			utils.LogError("AuthHandler", "Ошибка входа", err)
			respondServerError(ctx, path, startTime, err)
		}
		return
	}

	respond(ctx, path, startTime, fasthttp.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Response(),
	})
}
