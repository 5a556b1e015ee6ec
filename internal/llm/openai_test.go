package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultGroqConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Complete_JSON(t *testing.T) {
	var got chatCompletionsRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"ok\\\": true}\\n```" + `"}}]}`))
	})

	out, err := client.Complete(context.Background(), Request{
		System: "You are a parser.",
		User:   "payload",
		Tier:   TierStandard,
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a parser.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIClient_Complete_Text(t *testing.T) {
	var got chatCompletionsRequest
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello there \n"}}]}`))
	})

	out, err := client.Complete(context.Background(), Request{User: "hi", Tier: TierLite})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Len(t, got.Messages, 1)
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAIClient_Complete_Non2xx(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "rate limited")
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	var emptyErr *EmptyResponseError
	require.True(t, errors.As(err, &emptyErr))
}

func TestNewOpenAIClient_RequiresKeyAndURL(t *testing.T) {
	_, err := NewOpenAIClient(DefaultGroqConfig(), "")
	assert.Error(t, err)

	cfg := DefaultGroqConfig()
	cfg.BaseURL = ""
	_, err = NewOpenAIClient(cfg, "key")
	assert.Error(t, err)
}

func TestNewClient_SelectsProvider(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultGroqConfig(), "key")
	require.NoError(t, err)
	_, ok := client.(*OpenAIClient)
	assert.True(t, ok)
	assert.NoError(t, client.Close())
}
