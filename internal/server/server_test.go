package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAnswerer struct {
	answer string
	err    error
	asked  string
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string) (string, error) {
	f.asked = question
	if f.err != nil {
		return fmt.Sprintf("Sorry, an error occurred: %v", f.err), f.err
	}
	return f.answer, nil
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat_Success(t *testing.T) {
	fake := &fakeAnswerer{answer: "Paris."}
	srv := New(fake, nil, "", discardLogger())

	rec := postChat(t, srv.Handler(), `{"message": "capital of france?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Paris.", resp.Response)
	assert.Equal(t, "capital of france?", fake.asked)
}

func TestChat_AnswerFailureReturns500WithMessage(t *testing.T) {
	fake := &fakeAnswerer{err: errors.New("model down")}
	srv := New(fake, nil, "", discardLogger())

	rec := postChat(t, srv.Handler(), `{"message": "hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Response, "Sorry, an error occurred:"))
	assert.Contains(t, resp.Response, "model down")
}

func TestChat_BadRequests(t *testing.T) {
	srv := New(&fakeAnswerer{answer: "x"}, nil, "", discardLogger())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"message": `},
		{"missing message", `{}`},
		{"blank message", `{"message": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, srv.Handler(), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := New(&fakeAnswerer{}, nil, "", discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCORSHeaders(t *testing.T) {
	srv := New(&fakeAnswerer{}, []string{"http://localhost:3000"}, "", discardLogger())

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
