package rpc

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) callOp() huma.Operation {
	return huma.Operation{
		OperationID: "rpc-call",
		Method:      http.MethodPost,
		Path:        "/api/v1/rpc/{name}",
		Summary:     "Invoke a named server-side procedure",
		Description: "Procedures run immediately against authoritative state and are never queued on the client.",
		Tags:        []string{"rpc"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
		// RawBody is documented as application/json, which makes huma
		// validate the body against the placeholder binary-string schema
		// and reject every JSON object; the handler decodes RawBody itself.
		SkipValidateBody: true,
	}
}
