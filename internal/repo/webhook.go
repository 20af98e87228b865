package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// WebhookConfig controls event change delivery to an external endpoint,
// typically the calendar sync service.
type WebhookConfig struct {
	// URL is the webhook endpoint. If empty, webhooks are disabled.
	URL string

	// Headers are additional HTTP headers to include (e.g., Authorization).
	Headers map[string]string

	// Version is included in the webhook payload and User-Agent.
	Version string
}

// WebhookPayload is the JSON body POSTed to the webhook endpoint.
type WebhookPayload struct {
	Kind       ChangeKind              `json:"kind"`
	Event      event.StandardizedEvent `json:"event"`
	SentAt     time.Time               `json:"sentAt"`
	AppVersion string                  `json:"appVersion,omitempty"`
}

// WebhookNotifier delivers change payloads to a configured webhook URL.
// It batches changes within a window to avoid flooding the endpoint
// during bulk imports.
type WebhookNotifier struct {
	config  WebhookConfig
	client  *http.Client
	mu      sync.Mutex
	pending []WebhookPayload
	timer   *time.Timer
	batchMs int
}

// NewWebhookNotifier creates a notifier. Pass an empty URL to disable.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.URL == "" {
		cfg.URL = os.Getenv("PARENTCAL_WEBHOOK_URL")
	}
	return &WebhookNotifier{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		batchMs: 5000,
	}
}

// Enabled returns true if a webhook URL is configured.
func (w *WebhookNotifier) Enabled() bool {
	return w.config.URL != ""
}

// Subscriber adapts the notifier to the repository change feed.
func (w *WebhookNotifier) Subscriber() Subscriber {
	return func(change Change) error {
		w.Notify(change)
		return nil
	}
}

// Notify queues a change for webhook delivery. Non-blocking; changes
// within the batch window are grouped and sent together.
func (w *WebhookNotifier) Notify(change Change) {
	if !w.Enabled() {
		return
	}

	payload := WebhookPayload{
		Kind:       change.Kind,
		Event:      change.Event,
		SentAt:     time.Now().UTC(),
		AppVersion: w.config.Version,
	}

	w.mu.Lock()
	w.pending = append(w.pending, payload)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.batchMs)*time.Millisecond, w.flush)
	w.mu.Unlock()
}

// Flush sends all pending changes immediately. Safe to call externally.
func (w *WebhookNotifier) Flush() {
	w.flush()
}

func (w *WebhookNotifier) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	go w.sendBatch(batch)
}

func (w *WebhookNotifier) sendBatch(payloads []WebhookPayload) {
	var body interface{}
	if len(payloads) == 1 {
		body = payloads[0]
	} else {
		body = map[string]interface{}{
			"changes": payloads,
			"count":   len(payloads),
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parentcal webhook: marshal error: %v\n", err)
		return
	}

	// Try up to 2 times (initial + 1 retry on 5xx)
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			time.Sleep(5 * time.Second)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		req, err := http.NewRequestWithContext(ctx, "POST", w.config.URL, bytes.NewReader(data))
		if err != nil {
			cancel()
			fmt.Fprintf(os.Stderr, "parentcal webhook: request error: %v\n", err)
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "parentcal/"+w.config.Version)
		for k, v := range w.config.Headers {
			req.Header.Set(k, v)
		}

		resp, err := w.client.Do(req)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "parentcal webhook: delivery failed: %v\n", err)
			if attempt == 0 {
				continue
			}
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return
		}
		if resp.StatusCode >= 500 && attempt == 0 {
			fmt.Fprintf(os.Stderr, "parentcal webhook: %d, retrying...\n", resp.StatusCode)
			continue
		}
		fmt.Fprintf(os.Stderr, "parentcal webhook: delivery returned %d\n", resp.StatusCode)
		return
	}
}
