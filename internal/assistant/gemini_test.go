package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorexhq/fleet-assistant/pkg/config"
)

func newTestGeminiClient(baseURL string) *GeminiClient {
	return NewGeminiClient(config.GeminiConfig{
		APIKey:         "test-key",
		Model:          "gemini-1.5-flash",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	})
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Your next service is due in December."}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	got, err := client.Generate(context.Background(), "when is my next service?")

	require.NoError(t, err)
	assert.Equal(t, "Your next service is due in December.", got)
	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "when is my next service?", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "unauthorized", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestGeminiClient(server.URL)
			_, err := client.Generate(context.Background(), "hello")

			assert.ErrorIs(t, err, ErrRemoteUnavailable)
		})
	}
}

func TestGeminiGenerateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestGeminiGenerateMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrRemoteMalformed)
}

func TestGeminiGenerateEmptyReply(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates":[]}`},
		{name: "no parts", body: `{"candidates":[{"content":{"parts":[]}}]}`},
		{name: "empty text", body: `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestGeminiClient(server.URL)
			_, err := client.Generate(context.Background(), "hello")

			assert.ErrorIs(t, err, ErrRemoteEmptyReply)
		})
	}
}
