package record

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{entityType}",
		Summary:     "Fetch all records of one entity type",
		Description: "Returns the owner's full non-deleted set; deletions are visible as absence.",
		Tags:        []string{"records"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) upsertOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-upsert",
		Method:      http.MethodPut,
		Path:        "/api/v1/records/{entityType}/{id}",
		Summary:     "Create or update a record",
		Tags:        []string{"records"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "records-delete",
		Method:        http.MethodDelete,
		Path:          "/api/v1/records/{entityType}/{id}",
		Summary:       "Delete a record",
		Tags:          []string{"records"},
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   h.middleware,
		DefaultStatus: http.StatusNoContent,
	}
}
