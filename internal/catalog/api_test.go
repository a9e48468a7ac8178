package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIHandlerRejectsInvalidRating(t *testing.T) {
	t.Parallel()

	handler := NewAPIHandler(NewStaticService(fixture()))
	req := httptest.NewRequest(http.MethodGet, "/api/businesses?rating=high", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_query", body["error"])
	require.EqualValues(t, http.StatusBadRequest, body["status"])
}

func TestAPIHandlerEncodesNumericIDs(t *testing.T) {
	t.Parallel()

	handler := NewAPIHandler(NewStaticService(fixture()))
	req := httptest.NewRequest(http.MethodGet, "/api/businesses?category=Cafes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	require.EqualValues(t, 1, raw[0]["id"])
	require.NotContains(t, raw[0], "lat")
}
