package serviceutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestResponseSuccess(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, ResponseSuccess(c, http.StatusOK, "ok", map[string]int{"n": 1}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok","data":{"n":1}}`, rec.Body.String())
}

func TestResponseError(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, ResponseError(c, http.StatusBadGateway, "Failed to load", errors.New("timeout")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to load", resp.Message)
	assert.Equal(t, "timeout", resp.Error)

	c, rec = newContext()
	require.NoError(t, ResponseError(c, http.StatusNotFound, "Not found", nil))
	assert.JSONEq(t, `{"success":false,"message":"Not found"}`, rec.Body.String())
}
