package rpc

import "encoding/json"

type callInput struct {
	Name    string `path:"name" doc:"Procedure name, e.g. company.activate_invitation"`
	RawBody []byte `contentType:"application/json"`
}

type callOutput struct {
	Body CallResponse
}

type CallResponse struct {
	Result json.RawMessage `json:"result"`
}
