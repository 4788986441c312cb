package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vorexhq/fleet-assistant/pkg/config"
	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"github.com/vorexhq/fleet-assistant/pkg/resilience"
	"go.uber.org/zap"
)

// Remote failure kinds. The generator matches on these with errors.Is;
// every one of them triggers the silent mock fallback.
var (
	// ErrRemoteUnavailable covers transport failures, non-2xx statuses,
	// timeouts and an open circuit breaker.
	ErrRemoteUnavailable = errors.New("remote model unavailable")
	// ErrRemoteMalformed means the response body could not be decoded.
	ErrRemoteMalformed = errors.New("remote model response malformed")
	// ErrRemoteEmptyReply means the body decoded but carried no text.
	ErrRemoteEmptyReply = errors.New("remote model returned no text")
)

// GeminiClient calls the hosted Gemini generateContent endpoint. The API key
// is resolved once at construction and never re-read.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewGeminiClient creates a client from resolved configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// SetCircuitBreaker enables circuit breaker protection for remote calls.
func (g *GeminiClient) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	g.breaker = cb
}

// generateContent wire types, per the Gemini REST API.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends a single-turn prompt and returns the model's reply text.
// Exactly one attempt is made; retry policy belongs to the caller.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s/models/%s:generateContent?%s", g.baseURL, g.model, params.Encode())

	body, err := g.doRequest(ctx, reqURL, payload)
	if err != nil {
		return "", err
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		logger.WarnContext(ctx, "gemini response undecodable", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrRemoteMalformed, err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrRemoteEmptyReply
	}

	text := apiResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrRemoteEmptyReply
	}

	return text, nil
}

// doRequest executes the HTTP call, optionally wrapped by the circuit breaker.
// All transport-level failures collapse into ErrRemoteUnavailable.
func (g *GeminiClient) doRequest(ctx context.Context, reqURL string, payload []byte) ([]byte, error) {
	call := func(_ context.Context) (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}

	var result interface{}
	var err error
	if g.breaker != nil {
		result, err = g.breaker.Execute(ctx, call)
	} else {
		result, err = call(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	return result.([]byte), nil
}
