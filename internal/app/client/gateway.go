package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/client/config"
	"tripkeeper/internal/domain/sync"
)

// HTTPGateway talks to the remote authoritative store. Failures are mapped to
// the sync error taxonomy from status codes, never from error message text:
// 401 is an expired credential, 409 a version conflict, 422 a permanently
// rejected payload; transport errors and timeouts become *NetworkError.
type HTTPGateway struct {
	client    *http.Client
	log       *slog.Logger
	session   *SessionStore
	baseURL   string
	userAgent string
}

func NewHTTPGateway(cfg *config.Config, session *SessionStore, log *slog.Logger) *HTTPGateway {
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &HTTPGateway{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log.With("component", "gateway"),
		session:   session,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "Tripkeeper-Client/1.0",
	}
}

// HealthCheck verifies the server is reachable.
func (g *HTTPGateway) HealthCheck(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return g.do(ctx, http.MethodGet, "/api/v1/health", nil, &out)
}

func (g *HTTPGateway) FetchAll(ctx context.Context, ownerID, entityType string) ([]sync.Record, error) {
	var out struct {
		Records []sync.Record `json:"records"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/records/"+entityType, nil, &out); err != nil {
		return nil, err
	}

	// The server scopes by the authenticated user; drop anything else so a
	// stale credential can never leak records across owners.
	records := out.Records[:0]
	for _, rec := range out.Records {
		if rec.OwnerID == ownerID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (g *HTTPGateway) Upsert(ctx context.Context, entityType string, rec sync.Record) (*sync.Record, error) {
	body := struct {
		Payload json.RawMessage `json:"payload"`
		Version int64           `json:"version"`
	}{Payload: rec.Payload, Version: rec.Version}

	var out struct {
		Record sync.Record `json:"record"`
	}
	if err := g.do(ctx, http.MethodPut, "/api/v1/records/"+entityType+"/"+rec.ID, body, &out); err != nil {
		return nil, err
	}
	return &out.Record, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, entityType, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/v1/records/"+entityType+"/"+id, nil, nil)
}

func (g *HTTPGateway) CallProcedure(ctx context.Context, name string, args any) (json.RawMessage, error) {
	var out struct {
		Result json.RawMessage `json:"result"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/v1/rpc/"+name, args, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	if token := g.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	g.log.Debug("request", "method", method, "path", path)

	resp, err := g.client.Do(req)
	if err != nil {
		return &sync.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &sync.NetworkError{Op: "read response", Err: err}
	}

	if resp.StatusCode >= 400 {
		return g.mapError(resp.StatusCode, data, method+" "+path)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (g *HTTPGateway) mapError(status int, body []byte, op string) error {
	var payload struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	g.log.Debug("request failed", "op", op, "status", status, "code", payload.Code)

	switch status {
	case http.StatusUnauthorized:
		return sync.ErrCredentialExpired
	case http.StatusConflict:
		return sync.ErrConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return sync.ErrValidation
	default:
		return &sync.NetworkError{Op: op, Err: fmt.Errorf("server returned status %d", status)}
	}
}
