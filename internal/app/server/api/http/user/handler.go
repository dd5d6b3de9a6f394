package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/session"
	"tripkeeper/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.refreshOp(), h.refresh)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrLoginTaken):
			return nil, huma.Error409Conflict("login already taken")
		case errors.Is(err, user.ErrInvalidInput):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			h.log.Error("register failed", "error", err)
			return nil, huma.Error500InternalServerError("registration failed")
		}
	}

	return &registerOutput{Body: RegisterResponse{UserID: userID}}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	tokens, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "error", err)
		return nil, huma.Error500InternalServerError("sign-in failed")
	}

	return &loginOutput{Body: AuthResponse{
		Token:        tokens.Access,
		RefreshToken: tokens.Refresh,
		UserID:       u.ID,
	}}, nil
}

func (h *Handler) refresh(ctx context.Context, input *refreshInput) (*refreshOutput, error) {
	tokens, err := h.session.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrTokenInvalid) || errors.Is(err, session.ErrTokenExpired) {
			return nil, huma.Error401Unauthorized("refresh token rejected")
		}
		h.log.Error("refresh failed", "error", err)
		return nil, huma.Error500InternalServerError("refresh failed")
	}

	return &refreshOutput{Body: AuthResponse{
		Token:        tokens.Access,
		RefreshToken: tokens.Refresh,
	}}, nil
}
