// Package gemini is the adapter for the Gemini generative API used as the
// transcription model. It submits audio either inline (small assets) or via
// the provider's file storage (large assets) and returns the raw model text.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash-exp"

	// maxInlineBytes is the provider's practical ceiling for embedding audio
	// directly in the generation request. Anything larger goes through the
	// file storage endpoint.
	maxInlineBytes = 20 * 1024 * 1024
)

// DefaultSystemPrompt instructs the model to label speakers, timestamp each
// segment and answer in the JSON shape the normalizer parses.
const DefaultSystemPrompt = `You are transcribing an audio file with multiple speakers. Please:
1. Identify and label different speakers (e.g., Speaker 1, Speaker 2)
2. Include timestamps in MM:SS format at the beginning of each speaker's segment
3. Maintain speaker consistency throughout the transcription
4. Format the output clearly with speaker labels and timestamps
5. Return the transcription in the following JSON format:
{
  "segments": [
    {
      "speaker": "Speaker 1",
      "timestamp": "00:00",
      "text": "Transcribed text here"
    }
  ]
}`

// ProviderError is any failure surfaced by the provider: auth rejection,
// quota exhaustion, malformed request or a plain network fault. The adapter
// never retries; that decision belongs to the caller.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gemini: provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: provider error: %s", e.Message)
}

// Client talks to the Gemini API with a single credential. One Client is
// constructed per incoming request and holds no state beyond the call.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// NewClient creates a Client bound to the supplied credential.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcribe submits one audio chunk plus the transcription prompt and
// returns the model's raw text output. Assets up to 20 MB are embedded
// base64-inline; larger ones are uploaded to provider file storage first and
// the uploaded artifact is deleted again once the generation call returns,
// success or failure, so user audio never lingers there.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, systemPrompt string, speakerCount int) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	userPrompt := fmt.Sprintf("Please transcribe this audio file. There are approximately %d speakers.", speakerCount)

	var audioPart part
	if len(audio) <= maxInlineBytes {
		audioPart = part{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}}
	} else {
		name, uri, err := c.uploadFile(ctx, audio, mimeType)
		if err != nil {
			return "", err
		}
		defer c.deleteFile(name)
		audioPart = part{FileData: &fileData{MimeType: mimeType, FileURI: uri}}
	}

	reqBody := generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Parts: []part{audioPart, {Text: userPrompt}}}},
	}

	return c.generateContent(ctx, reqBody)
}

// Validate issues a minimal, low-cost generation request to check the
// credential. It reports false on any failure, auth or otherwise, and never
// returns an error itself.
func (c *Client) Validate(ctx context.Context) bool {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: "Test"}}}},
	}
	_, err := c.generateContent(ctx, reqBody)
	return err == nil
}

func (c *Client) generateContent(ctx context.Context, reqBody generateContentRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Message: fmt.Sprintf("encoding request: %v", err)}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Message: fmt.Sprintf("building request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", decodeAPIError(httpResp)
	}

	var response generateContentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", &ProviderError{Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Message: "model returned no candidates"}
	}

	var text strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// uploadFile pushes the audio bytes to provider file storage and returns the
// resource name (for deletion) and the URI to reference in generation.
func (c *Client) uploadFile(ctx context.Context, audio []byte, mimeType string) (name, uri string, err error) {
	url := fmt.Sprintf("%s/upload/v1beta/files", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", "", &ProviderError{Message: fmt.Sprintf("building upload request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", mimeType)
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("X-Goog-Upload-Protocol", "raw")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", "", &ProviderError{Message: fmt.Sprintf("upload failed: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", "", decodeAPIError(httpResp)
	}

	var response uploadFileResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", "", &ProviderError{Message: fmt.Sprintf("decoding upload response: %v", err)}
	}
	if response.File.URI == "" {
		return "", "", &ProviderError{Message: "upload returned no file URI"}
	}

	return response.File.Name, response.File.URI, nil
}

// deleteFile removes an uploaded artifact from provider storage. Best-effort:
// the transcription outcome is already decided by the time this runs.
func (c *Client) deleteFile(name string) {
	if name == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/%s", c.baseURL, name)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return
	}
	httpResp.Body.Close()
}

func decodeAPIError(resp *http.Response) *ProviderError {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &ProviderError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}
	return &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
