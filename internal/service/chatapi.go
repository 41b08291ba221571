package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
)

// ChatRequest is the outbound JSON body of one dispatch.
type ChatRequest struct {
	Action        string         `json:"action"`
	Prompt        string         `json:"prompt"`
	Model         string         `json:"model"`
	Persona       string         `json:"persona"`
	AccessKey     string         `json:"accessKey,omitempty"`
	History       []HistoryEntry `json:"history"`
	ImageMimeType string         `json:"imageMimeType,omitempty"`
	ImageDataURL  string         `json:"imageDataUrl,omitempty"`
}

type HistoryEntry struct {
	Role  string        `json:"role"`
	Parts []HistoryPart `json:"parts"`
}

type HistoryPart struct {
	Text string `json:"text"`
}

// ChatResponse is the structured reply of the chat service.
type ChatResponse struct {
	Reply     string `json:"reply"`
	ImageURL  string `json:"imageUrl"`
	ModelUsed string `json:"modelUsed"`
	Username  string `json:"username"`
	Error     string `json:"error"`
}

// IsEmpty reports a reply carrying neither text nor an image.
func (r *ChatResponse) IsEmpty() bool {
	return r.Reply == "" && r.ImageURL == ""
}

// APIError is an application-level failure: the service answered, but with an
// error field. It may arrive with any HTTP status.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError is a failed exchange with no usable error body.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("chat service returned HTTP %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteClient is the dispatch pipeline's view of the chat service.
type RemoteClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatClient talks to the single remote chat endpoint.
type ChatClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewChatClient(endpoint string) *ChatClient {
	return &ChatClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

func (c *ChatClient) Chat(ctx context.Context, chatReq *ChatRequest) (*ChatResponse, error) {
	chatReq.Action = "chat"

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &TransportError{StatusCode: resp.StatusCode}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}

	// An error field counts as failure whatever the status code says.
	if chatResp.Error != "" {
		return nil, &APIError{Message: chatResp.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	return &chatResp, nil
}

// NormalizeError converts a dispatch failure into the marker-prefixed text
// shown in the timeline.
func NormalizeError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return domain.ErrorMarker + " " + apiErr.Message
	}

	var transErr *TransportError
	if errors.As(err, &transErr) {
		if transErr.StatusCode != 0 {
			return fmt.Sprintf("%s Service error (HTTP %d). Please try again.", domain.ErrorMarker, transErr.StatusCode)
		}
		return domain.ErrorMarker + " Network error. Check your connection and try again."
	}

	return domain.ErrorMarker + " Something went wrong. Please try again."
}
