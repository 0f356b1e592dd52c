package writer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"writer-example/internal/domain"
)

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.writer.com", "https://api.writer.com/v1/chat"},
		{"https://api.writer.com/", "https://api.writer.com/v1/chat"},
		{"https://api.writer.com/v1", "https://api.writer.com/v1/chat"},
		{"https://api.writer.com/v1/", "https://api.writer.com/v1/chat"},
		{"", "https://api.writer.com/v1/chat"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(domain.NewCredential("k"))
	require.Equal(t, "https://api.writer.com", c.baseURL)
	require.NotNil(t, c.httpClient)
	require.Equal(t, 60*time.Second, c.httpClient.Timeout)
}

func newTestClient(t *testing.T, srv *httptest.Server, key string) *Client {
	t.Helper()
	return NewClient(
		domain.NewCredential(key),
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
}

func testRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Model: "palmyra-x-004",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
			{Role: domain.RoleUser, Content: "describe a sweater"},
		},
	}
}

func TestClient_ChatComplete_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got domain.ChatRequest
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, testRequest(), got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"id": "chat-123",
			"model": "palmyra-x-004",
			"created": 1715361795,
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "A cozy sweater."}
			}]
		}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv, "sk-test").ChatComplete(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "chat-123", resp.ID)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "stop", resp.Choices[0].FinishReason)
	require.Equal(t, domain.RoleAssistant, resp.Choices[0].Message.Role)
	require.Equal(t, "A cozy sweater.", resp.Choices[0].Message.Content)
}

func TestClient_ChatComplete_EmptyChoicesIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"chat-1","choices":[]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv, "sk-test").ChatComplete(context.Background(), testRequest())
	require.NoError(t, err)
	require.Empty(t, resp.Choices)
}

func TestClient_ChatComplete_MissingKeyStillSendsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, "Bearer", strings.TrimSpace(r.Header.Get("Authorization")))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"description":"Invalid API key"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "").ChatComplete(context.Background(), testRequest())
	require.True(t, called)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "Invalid API key")
}

func TestClient_ChatComplete_StatusErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"errors":[{"description":"nope"}]}`))
		}))

		_, err := newTestClient(t, srv, "sk-test").ChatComplete(context.Background(), testRequest())
		srv.Close()

		require.Error(t, err)
		require.Contains(t, err.Error(), "unexpected status")
		require.Contains(t, err.Error(), strconv.Itoa(status))
	}
}

func TestClient_ChatComplete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "sk-test").ChatComplete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestClient_ChatComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "sk-test")
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.ChatComplete(context.Background(), testRequest())
	require.Error(t, err)
}

func TestClient_ChatComplete_NetworkError(t *testing.T) {
	c := NewClient(domain.NewCredential("sk-test"),
		WithBaseURL("http://127.0.0.1:1"),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
	)
	_, err := c.ChatComplete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestClient_ChatComplete_EmptyModel(t *testing.T) {
	c := NewClient(domain.NewCredential("sk-test"))
	_, err := c.ChatComplete(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClient_ChatComplete_NilHTTPClientFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(domain.NewCredential("sk-test"), WithBaseURL(srv.URL))
	c.httpClient = nil
	resp, err := c.ChatComplete(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Choices[0].Message.Content)
}
