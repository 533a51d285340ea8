package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

func TestClientGenerateRequestShape(t *testing.T) {
	var captured struct {
		path  string
		query string
		body  generateRequest
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	attachment := ports.Attachment{MediaType: "image/png", Data: []byte{0x89, 0x50}}
	out, err := client.Generate(context.Background(), "model-x", "do the thing", []ports.Attachment{attachment}, ports.GenerationOptions{Temperature: 0.3, MaxOutputTokens: 1024})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "ok" {
		t.Fatalf("output = %q", out)
	}

	if captured.path != "/v1beta/models/model-x:generateContent" {
		t.Fatalf("path = %q", captured.path)
	}
	if captured.query != "key=secret" {
		t.Fatalf("query = %q, api key should travel as query param", captured.query)
	}
	parts := captured.body.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want instruction plus one attachment", len(parts))
	}
	if parts[0].Text != "do the thing" || parts[0].InlineData != nil {
		t.Fatalf("first part must be the plain instruction, got %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
		t.Fatalf("second part must carry the attachment, got %+v", parts[1])
	}
	if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(attachment.Data) {
		t.Fatalf("attachment payload is not base64 of the source bytes")
	}
	if captured.body.GenerationConfig.Temperature != 0.3 || captured.body.GenerationConfig.MaxOutputTokens != 1024 {
		t.Fatalf("generation config = %+v", captured.body.GenerationConfig)
	}
}

func TestClientGenerateJoinsMultipleParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"first "},{"text":"second"}]}}]}`))
	}))
	defer server.Close()

	out, err := New(server.URL, "").Generate(context.Background(), "m", "p", nil, ports.GenerationOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "first second" {
		t.Fatalf("output = %q", out)
	}
}

func TestClientGenerateBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "").Generate(context.Background(), "m", "p", nil, ports.GenerationOptions{})
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("error = %v, want block reason surfaced", err)
	}
}

func TestClientGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "").Generate(context.Background(), "m", "p", nil, ports.GenerationOptions{})
	if err == nil || !strings.Contains(err.Error(), "empty generation result") {
		t.Fatalf("error = %v", err)
	}
}

func TestClientGenerateHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := New(server.URL, "").Generate(context.Background(), "m", "p", nil, ports.GenerationOptions{})
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Body, "quota exceeded") {
		t.Fatalf("body = %q, want upstream payload retained", statusErr.Body)
	}
}
