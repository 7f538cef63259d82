package tutorsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/tutor"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the Google Generative Language REST API.
type GeminiClient struct {
	model   string
	apiKey  string
	baseURL string
	http    *http.Client
}

var _ tutor.Client = (*GeminiClient)(nil)

func NewGeminiClient(conf *core.Config) *GeminiClient {
	return &GeminiClient{
		model:   conf.Tutor.Model,
		apiKey:  conf.Tutor.APIKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Converse restates the topic prompt alongside every user message so the
// model never loses its instructions, however long the conversation gets.
func (c *GeminiClient) Converse(ctx context.Context, systemPrompt string, history []tutor.Turn, message string) (string, error) {
	if c.apiKey == "" {
		return "", tutor.NewTransportError(errors.New("no API key configured"))
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == tutor.RoleTutor {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: fmt.Sprintf("SYSTEM: %s\nUSER: %s", systemPrompt, message)}},
	})

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", tutor.NewTransportError(err)
	}
	defer res.Body.Close()

	var parsed geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", tutor.NewTransportError(errors.Wrap(err, "decoding response"))
	}
	if res.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", tutor.NewTransportError(errors.Errorf("status %d: %s", res.StatusCode, parsed.Error.Message))
		}
		return "", tutor.NewTransportError(errors.Errorf("status %d", res.StatusCode))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", tutor.NewTransportError(errors.New("empty completion"))
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
