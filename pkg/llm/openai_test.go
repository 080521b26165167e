package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "cmpl-1",
			"model": "test-model",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": `{"questions": []}`}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAI("test-key", "test-model", WithBaseURL(server.URL+"/v1"))
	out, err := client.Complete(context.TODO(), Request{
		System: "You are examining counsel.",
		Prompt: "Generate questions.",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, out)

	assert.Equal(t, "test-model", gotBody["model"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

func TestOpenAI_CompleteEmptyChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "cmpl-1", "choices": []any{}})
	}))
	defer server.Close()

	client := NewOpenAI("test-key", "test-model", WithBaseURL(server.URL+"/v1"))
	out, err := client.Complete(context.TODO(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenAI_CompleteTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenAI("test-key", "test-model", WithBaseURL(server.URL+"/v1"))
	_, err := client.Complete(context.TODO(), Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestOpenAI_CompleteStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{`{"que`, `stions"`, `: []}`} {
			payload, _ := json.Marshal(map[string]any{
				"id": "cmpl-1",
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]any{"content": chunk}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAI("test-key", "test-model", WithBaseURL(server.URL+"/v1"))

	var deltas []string
	out, err := client.CompleteStream(context.TODO(), Request{Prompt: "x"}, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, out)
	assert.Equal(t, []string{`{"que`, `stions"`, `: []}`}, deltas)
}
