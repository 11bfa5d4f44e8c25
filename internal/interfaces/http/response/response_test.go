package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "tapmove.backend/internal/domain/errors"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestSuccess(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "pay_abc123def456"})
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"pay_abc123def456"}`, w.Body.String())
}

func TestError_AppErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domainerrors.Validation("bad input"), http.StatusBadRequest},
		{domainerrors.NotFound("missing"), http.StatusNotFound},
		{domainerrors.InvalidState("already settled"), http.StatusConflict},
		{domainerrors.Expired("deadline passed"), http.StatusGone},
		{domainerrors.Unauthorized("bad key"), http.StatusUnauthorized},
		{domainerrors.Ledger("node down", fmt.Errorf("dial tcp")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		w := record(func(c *gin.Context) { Error(c, tt.err) })
		assert.Equal(t, tt.status, w.Code)
	}
}

func TestError_UnknownErrorIsOpaque(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, fmt.Errorf("pq: connection reset"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "pq:")
}
