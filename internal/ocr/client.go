// Package ocr is the boundary to the hosted optical-character-recognition
// service. The core only ever consumes the recognized text; everything
// image-related stays on the other side of this client.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmptyText is returned when the service responds successfully but
// recognized no text. The extraction pipeline has nothing to work with,
// so this surfaces to the caller instead of producing a junk event.
var ErrEmptyText = errors.New("ocr: no text recognized")

// Request asks the service to recognize text in an image.
type Request struct {
	ImageURL     string `json:"imageUrl"`
	EnhancedMode bool   `json:"enhancedMode,omitempty"`
}

// Response is the service's answer. Only Text is consumed by the core.
type Response struct {
	Text string `json:"text"`
}

// Client talks to the OCR HTTP endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Recognize sends the image reference and returns the cleaned text,
// ready for the extraction pipeline. Transport and service failures are
// returned as errors; empty recognition is ErrEmptyText.
func (c *Client) Recognize(ctx context.Context, req Request) (string, error) {
	if req.ImageURL == "" {
		return "", fmt.Errorf("ocr: image URL is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding ocr request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building ocr request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling ocr service: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr service returned %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ocr response: %w", err)
	}

	cleaned := CleanText(out.Text)
	if cleaned == "" {
		return "", ErrEmptyText
	}
	return cleaned, nil
}
