package health

import (
	"io"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestHealthCheck(t *testing.T) {
	_, api := humatest.New(t)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewHandler(log, nil).SetupRoutes(api)

	resp := api.Get("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"OK"}`, resp.Body.String())
}
