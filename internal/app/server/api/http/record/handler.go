package record

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/server/api/http/middleware/auth"
	"tripkeeper/internal/domain/record"
)

type Handler struct {
	service    record.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service record.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.upsertOp(), h.upsert)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	records, err := h.service.List(ctx, ownerID, input.EntityType)
	if err != nil {
		if errors.Is(err, record.ErrUnknownEntity) {
			return nil, huma.Error422UnprocessableEntity("unknown entity type")
		}
		h.log.Error("list records failed", "entity_type", input.EntityType, "error", err)
		return nil, huma.Error500InternalServerError("list records failed")
	}

	if records == nil {
		records = []record.Record{}
	}
	return &listOutput{Body: ListResponse{Records: records}}, nil
}

func (h *Handler) upsert(ctx context.Context, input *upsertInput) (*upsertOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	rec, err := h.service.Upsert(ctx, ownerID, input.EntityType, input.ID, input.Body.Payload, input.Body.Version)
	if err != nil {
		switch {
		case errors.Is(err, record.ErrVersionConflict):
			return nil, huma.Error409Conflict("record version conflict")
		case errors.Is(err, record.ErrUnknownEntity),
			errors.Is(err, record.ErrReadOnlyEntity),
			errors.Is(err, record.ErrInvalidPayload):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			h.log.Error("upsert record failed", "entity_type", input.EntityType, "id", input.ID, "error", err)
			return nil, huma.Error500InternalServerError("upsert record failed")
		}
	}

	return &upsertOutput{Body: UpsertResponse{Record: rec}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.service.Delete(ctx, ownerID, input.EntityType, input.ID); err != nil {
		if errors.Is(err, record.ErrUnknownEntity) {
			return nil, huma.Error422UnprocessableEntity("unknown entity type")
		}
		h.log.Error("delete record failed", "entity_type", input.EntityType, "id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("delete record failed")
	}

	return &deleteOutput{}, nil
}
