package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/server/api/http/middleware/auth"
	"tripkeeper/internal/domain/company"
)

type Handler struct {
	company    company.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(companyService company.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		company:    companyService,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.callOp(), h.call)
}

func (h *Handler) call(ctx context.Context, input *callInput) (*callOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	switch input.Name {
	case company.ProcActivateInvitation:
		return h.activateInvitation(ctx, ownerID, input.RawBody)
	default:
		return nil, huma.Error404NotFound("unknown procedure")
	}
}

func (h *Handler) activateInvitation(ctx context.Context, ownerID string, rawArgs []byte) (*callOutput, error) {
	var args company.ActivateArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, huma.Error422UnprocessableEntity("malformed arguments")
		}
	}

	link, err := h.company.ActivateInvitation(ctx, ownerID, args)
	if err != nil {
		switch {
		case errors.Is(err, company.ErrMissingInvitationCode),
			errors.Is(err, company.ErrCodeNotFound),
			errors.Is(err, company.ErrCodeUsed):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			h.log.Error("activate invitation failed", "error", err)
			return nil, huma.Error500InternalServerError("procedure failed")
		}
	}

	result, err := json.Marshal(link)
	if err != nil {
		return nil, huma.Error500InternalServerError("procedure failed")
	}
	return &callOutput{Body: CallResponse{Result: result}}, nil
}
