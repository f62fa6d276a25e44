package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder_NativeShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "all-minilm", body["model"])
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 3, e.Dimension())
}

func TestOllamaEmbedder_OpenAIShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 0}}},
		})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestOllamaEmbedder_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.5}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vec)
	assert.Equal(t, 3, calls)
}

func TestOllamaEmbedder_ConcurrentEmbeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2, 0.3, 0.4}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := e.Embed(context.Background(), "parallel query")
			assert.NoError(t, err)
			assert.Len(t, vec, 4)
			if d := e.Dimension(); d != 0 {
				assert.Equal(t, 4, d)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, e.Dimension())
}

func TestOllamaEmbedder_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOllamaEmbedder_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL})
	_, err := e.Embed(ctx, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
