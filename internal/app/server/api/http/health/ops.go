package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Liveness probe",
		Description: "Answers OK while the process serves traffic. Carries no dependency checks, so a failing database never masquerades as an unreachable server.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
