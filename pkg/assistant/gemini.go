package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the generative language REST API
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewGeminiClient builds a client for one model
func NewGeminiClient(apiKey string, model string) *GeminiClient {
	return &GeminiClient{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultGeminiBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *geminiFnCall `json:"functionCall,omitempty"`
}

type geminiFnCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	Tools []struct {
		FunctionDeclarations []Tool `json:"function_declarations"`
	} `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs exactly one generateContent call and returns either free
// text or the first function call of the first candidate
func (c *GeminiClient) Generate(ctx context.Context, prompt string, tools []Tool) (*ModelResult, error) {
	payload := geminiRequest{}
	payload.Contents = append(payload.Contents, struct {
		Parts []geminiPart `json:"parts"`
	}{Parts: []geminiPart{{Text: prompt}}})

	if len(tools) > 0 {
		payload.Tools = append(payload.Tools, struct {
			FunctionDeclarations []Tool `json:"function_declarations"`
		}{FunctionDeclarations: tools})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode model request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "could not build model request")
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.HTTPClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, errors.Wrap(ErrUpstream, "model response is not valid json")
	}

	if response.StatusCode != http.StatusOK {
		message := response.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return nil, errors.Wrap(ErrUpstream, message)
	}

	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, errors.Wrap(ErrUpstream, "model returned no content")
	}

	part := parsed.Candidates[0].Content.Parts[0]
	if part.FunctionCall != nil {
		return &ModelResult{Call: &FunctionCall{
			Name: part.FunctionCall.Name,
			Args: part.FunctionCall.Args,
		}}, nil
	}

	return &ModelResult{Text: part.Text}, nil
}
