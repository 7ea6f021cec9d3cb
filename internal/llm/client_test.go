package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultModel, client.Model())
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://example.test///"})

	assert.Equal(t, "http://example.test", client.baseURL)
}

func TestGenerate_SendsNonStreamingRequest(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": "  respuesta generada \n", "done": true})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "integracion"})
	answer, err := client.Generate(context.Background(), "prompt de prueba")
	require.NoError(t, err)

	assert.Equal(t, "respuesta generada", answer)
	assert.Equal(t, "integracion", captured.Model)
	assert.Equal(t, "prompt de prueba", captured.Prompt)
	assert.False(t, captured.Stream)
}

func TestGenerate_BearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secreto", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": "ok"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secreto"})
	_, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty response field", map[string]interface{}{"response": ""}},
		{"whitespace only", map[string]interface{}{"response": "   \n\t"}},
		{"missing response field", map[string]interface{}{"done": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL})
			_, err := client.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, ErrEmptyCompletion)
		})
	}
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "modelo no disponible", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "prompt")

	assert.ErrorContains(t, err, "completion API status 503")
	assert.ErrorContains(t, err, "modelo no disponible")
}

func TestGenerate_DoesNotRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
