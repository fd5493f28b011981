package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mlindgren/klimatlogg/internal/pkg/ingest"
	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

type mockIngest struct {
	err     error
	payload map[string]any
}

func (m *mockIngest) Ingest(_ context.Context, payload map[string]any) (model.Reading, error) {
	m.payload = payload
	if m.err != nil {
		return model.Reading{}, m.err
	}
	return model.Reading{Temperature: 21.5, Humidity: 48}, nil
}

type mockReader struct {
	readings model.Readings
}

func (m *mockReader) FetchAll(_ context.Context) model.Readings {
	return m.readings
}

func newTestServer(t *testing.T, ing *mockIngest, reader *mockReader, secret string) http.Handler {
	t.Helper()
	original := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() { zap.ReplaceGlobals(original) })

	return New(ing, reader, nil, 0).Routes(secret)
}

func postData(t *testing.T, h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostData_Created(t *testing.T) {
	ing := &mockIngest{}
	h := newTestServer(t, ing, &mockReader{}, "")

	rec := postData(t, h, `{"temperature": 21.5, "humidity": 48}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")

	// numbers arrive undamaged as json.Number
	assert.Equal(t, json.Number("21.5"), ing.payload["temperature"])
}

func TestPostData_InvalidBody(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "")

	rec := postData(t, h, `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestPostData_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation is client error", err: fmt.Errorf("%w: missing humidity", ingest.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "store unavailable is server error", err: fmt.Errorf("%w: retries exhausted", ingest.ErrStoreUnavailable), wantStatus: http.StatusInternalServerError},
		{name: "write failure is server error", err: fmt.Errorf("%w: insert failed", ingest.ErrWrite), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, &mockIngest{err: tc.err}, &mockReader{}, "")

			rec := postData(t, h, `{"temperature": 1, "humidity": 2}`, nil)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGetReadings_NeverFails(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/readings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var view model.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.NoData)
	assert.Equal(t, model.NoDataText, view.LatestTemperature)
}

func TestGetReadings_View(t *testing.T) {
	reader := &mockReader{readings: model.Readings{
		{Temperature: 21.456, Humidity: 48.1, RecordedAt: time.Now()},
	}}
	h := newTestServer(t, &mockIngest{}, reader, "")

	req := httptest.NewRequest(http.MethodGet, "/api/readings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view model.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "21.46°C", view.LatestTemperature)
	assert.Len(t, view.Series, 2)
}

func TestAuth_MissingToken(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "s3cret")

	rec := postData(t, h, `{"temperature": 1, "humidity": 2}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "s3cret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "dht11-livingroom",
		"iat": time.Now().Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	rec := postData(t, h, `{"temperature": 1, "humidity": 2}`, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "s3cret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).
		SignedString([]byte("other"))
	require.NoError(t, err)

	rec := postData(t, h, `{"temperature": 1, "humidity": 2}`, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &mockIngest{}, &mockReader{}, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetReadings_GeneratedAtUsesClock(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	original := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = original })

	h := newTestServer(t, &mockIngest{}, &mockReader{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/readings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view model.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.GeneratedAt.Equal(fixed))
}
