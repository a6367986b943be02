package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sanctuary-app/internal/domain/checkout"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		action checkout.Action
	}{
		{checkout.ErrUnauthenticated, http.StatusUnauthorized, checkout.ActionLogIn},
		{fmt.Errorf("create: %w", errors.Join(checkout.ErrUpstreamUnavailable, errors.New("timeout"))), http.StatusBadGateway, checkout.ActionRetry},
		{checkout.ErrSessionExpired, http.StatusGone, checkout.ActionRestartPurchase},
		{checkout.ErrSessionNotFound, http.StatusNotFound, checkout.ActionContactSupport},
		{checkout.ErrNoProducts, http.StatusBadRequest, checkout.ActionFixRequest},
		{fmt.Errorf("%w: x", checkout.ErrUnknownProduct), http.StatusNotFound, checkout.ActionFixRequest},
		{errors.New("boom"), http.StatusInternalServerError, checkout.ActionContactSupport},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Error(c, tt.err)

		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(tt.action), body["action"])
		assert.NotEmpty(t, body["error"])
		assert.True(t, c.IsAborted())
	}
}
