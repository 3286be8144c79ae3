package apidoc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(context.Background())
	require.NoError(t, err)
	return doc
}

func TestLoad(t *testing.T) {
	doc := loadDocument(t)

	assert.ElementsMatch(t, []string{"/api/ask", "/api/feedback", "/api/transcript", "/api/report", "/api/outbox", "/api/openapi.json"}, doc.Paths())
}

func TestHandlerServesJSON(t *testing.T) {
	doc := loadDocument(t)

	response := doc.Handler(httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil), 0)

	assert.Equal(t, http.StatusOK, response.Status)
	assert.Equal(t, "application/json", response.ContentType)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(response.Content, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])
}

func TestMiddleware(t *testing.T) {
	doc := loadDocument(t)
	reached := 0
	handler := doc.Middleware(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		reached++
		responseWriter.WriteHeader(http.StatusNoContent)
	}))

	for _, test := range []struct {
		target string
		status int
	}{
		{"/api/outbox", http.StatusNoContent},
		{"/api/outbox?kind=report&limit=5", http.StatusNoContent},
		{"/api/outbox?kind=spam", http.StatusBadRequest},
		{"/api/outbox?limit=0", http.StatusBadRequest},
		{"/api/outbox?limit=many", http.StatusBadRequest},
		{"/chat", http.StatusNoContent},
	} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, test.target, nil))
		assert.Equal(t, test.status, recorder.Code, test.target)
	}
	assert.Equal(t, 3, reached)
}
