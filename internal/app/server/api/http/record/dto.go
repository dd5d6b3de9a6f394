package record

import (
	"encoding/json"

	"tripkeeper/internal/domain/record"
)

type listInput struct {
	EntityType string `path:"entityType" doc:"Entity type to fetch"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Records []record.Record `json:"records"`
}

type upsertInput struct {
	EntityType string `path:"entityType"`
	ID         string `path:"id"`
	Body       UpsertRequest
}

// UpsertRequest carries the record snapshot and the version the client
// assigned to it; the server rejects versions that do not move forward.
type UpsertRequest struct {
	Payload json.RawMessage `json:"payload"`
	Version int64           `json:"version" minimum:"1"`
}

type upsertOutput struct {
	Body UpsertResponse
}

type UpsertResponse struct {
	Record record.Record `json:"record"`
}

type deleteInput struct {
	EntityType string `path:"entityType"`
	ID         string `path:"id"`
}

type deleteOutput struct{}
