package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookPayload is the fixed shape posted to the external automation. The
// flags select which auxiliary documents it should produce; the resulting
// URLs show up in the ledger row later, out of band.
type WebhookPayload struct {
	UniqueID  string `json:"unique_id"`
	Prompt    string `json:"app_prompt"`
	PitchDeck bool   `json:"pitch_deck"`
	Document  bool   `json:"document"`
}

// WebhookTrigger fires a one-shot POST at the configured automation webhook.
// Success is judged by HTTP status alone, there is no acknowledgment beyond
// that.
type WebhookTrigger struct {
	url    string
	client *http.Client
	logger *zap.SugaredLogger
}

func NewWebhookTrigger(url string, logger *zap.SugaredLogger) *WebhookTrigger {
	return &WebhookTrigger{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (w *WebhookTrigger) Trigger(ctx context.Context, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return wrapErr(ErrKindWebhook, "encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return wrapErr(ErrKindWebhook, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return wrapErr(ErrKindWebhook, "post payload", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return wrapErr(ErrKindWebhook, "post payload", fmt.Errorf("webhook returned %s", resp.Status))
	}

	w.logger.Infow("webhook triggered", "unique_id", payload.UniqueID)

	return nil
}
