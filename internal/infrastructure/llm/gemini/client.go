package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client talks to the Google Generative Language API. One client serves
// every model candidate; the model id is chosen per request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *inlineDataPart `json:"inline_data,omitempty"`
}

type inlineDataPart struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate runs one model against the assembled prompt parts. The
// instruction text always precedes binary parts; providers are
// order-sensitive.
func (c *Client) Generate(ctx context.Context, modelID, instruction string, attachments []ports.Attachment, opts ports.GenerationOptions) (string, error) {
	parts := make([]generatePart, 0, 1+len(attachments))
	parts = append(parts, generatePart{Text: instruction})
	for _, a := range attachments {
		parts = append(parts, generatePart{
			InlineData: &inlineDataPart{
				MimeType: a.MediaType,
				Data:     base64.StdEncoding.EncodeToString(a.Data),
			},
		})
	}

	var req generateRequest
	req.Contents = make([]struct {
		Parts []generatePart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = parts
	req.GenerationConfig = generationConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", modelID)
	var resp generateResponse
	if err := c.postJSON(ctx, path, req, &resp, "generate"); err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked by provider: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty generation result for model %s", modelID)
	}

	var out strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return strings.TrimSpace(out.String()), nil
}
