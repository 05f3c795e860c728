package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/infrastructure/storage/postgres"
)

type stubDB struct {
	err error
}

func (s stubDB) Ping(context.Context) error { return s.err }

type stubPool struct {
	stubDB
}

func (stubPool) Stats() postgres.PoolStats {
	return postgres.PoolStats{TotalConns: 3, IdleConns: 2, MaxConns: 25}
}

func healthEngine(db Pinger) *gin.Engine {
	h := NewHealthHandler(db, "1.2.3")
	r := gin.New()
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
	return r
}

func TestHealth_Live(t *testing.T) {
	w := call(healthEngine(nil), http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
}

func TestHealth_Ready(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		pool   bool
	}{
		{name: "not configured", db: nil, status: http.StatusServiceUnavailable},
		{name: "ping fails", db: stubDB{err: errors.New("refused")}, status: http.StatusServiceUnavailable},
		{name: "healthy", db: stubDB{}, status: http.StatusOK},
		{name: "healthy pool", db: stubPool{}, status: http.StatusOK, pool: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(healthEngine(tt.db), http.MethodGet, "/health/ready", "")
			assert.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			_, hasPool := body["pool"]
			assert.Equal(t, tt.pool, hasPool)
		})
	}
}
