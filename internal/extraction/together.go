package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Together implements the Extractor interface against an OpenAI-compatible
// chat-completions endpoint with vision support.
type Together struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewTogether creates a new Together Extractor instance.
func NewTogether(baseURL, apiKey, model string) (*Together, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("together api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.together.xyz"
	}
	if model == "" {
		model = "meta-llama/Llama-3.2-11B-Vision-Instruct-Turbo"
	}

	return &Together{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stop        []string      `json:"stop"`
}

// chatMessage holds either a plain string (system) or a part list (user).
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatResponse is the subset of the completion response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractReceipt sends the receipt image to the completions endpoint and
// normalizes the model response into a Receipt. Exactly one request is made
// per call; failures are terminal and never retried here.
func (t *Together) ExtractReceipt(imageData []byte, contentType string) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// Prepare image data (convert to PNG if needed)
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	dataURL := fmt.Sprintf("data:image/png;base64,%s",
		base64.StdEncoding.EncodeToString(finalImageData))

	reqBody := chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: systemPrompt,
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: receiptPrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
		Stop:        stopSequences,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", t.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no content in completion response")
	}

	return Normalize(chatResp.Choices[0].Message.Content)
}

// Close closes the Together client (no-op for HTTP client)
func (t *Together) Close() error {
	return nil
}
