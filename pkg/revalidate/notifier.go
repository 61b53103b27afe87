/**
 * @description
 * Best-effort cache-revalidation notifier. After a successful catalog write the
 * service POSTs {secret, tag} to the frontend's revalidation endpoint so its
 * tag-based cache refreshes. The call is fire-and-forget by contract: a missing
 * configuration or a failed call is logged and swallowed, and must never fail
 * or roll back the write it follows.
 *
 * @dependencies
 * - bytes, context, encoding/json, log, net/http, time: Standard Go libraries.
 */
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// Recognized revalidation tags.
const (
	TagProducts     = "products"
	TagProductTypes = "product-types"
)

// Notifier announces that a catalog tag went stale. Implementations must not
// surface failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, tag string)
}

// Noop is the notifier used when no frontend endpoint is configured.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(ctx context.Context, tag string) {}

// Webhook POSTs revalidation requests to the frontend endpoint.
type Webhook struct {
	endpoint   string
	secret     string
	httpClient *http.Client
}

// NewWebhook creates a notifier for <frontendURL>/api/revalidate.
func NewWebhook(frontendURL, secret string) *Webhook {
	return &Webhook{
		endpoint: strings.TrimRight(frontendURL, "/") + "/api/revalidate",
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type revalidationRequest struct {
	Secret string `json:"secret"`
	Tag    string `json:"tag"`
}

// Notify sends the webhook. Every failure path logs a warning and returns;
// nothing propagates to the triggering write.
func (w *Webhook) Notify(ctx context.Context, tag string) {
	payload, err := json.Marshal(revalidationRequest{Secret: w.secret, Tag: tag})
	if err != nil {
		log.Printf("level=warn component=revalidate msg=\"payload marshal failed\" tag=%s err=%v", tag, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		log.Printf("level=warn component=revalidate msg=\"request build failed\" tag=%s err=%v", tag, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		log.Printf("level=warn component=revalidate msg=\"revalidation call failed\" tag=%s err=%v", tag, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("level=warn component=revalidate msg=\"revalidation rejected\" tag=%s status=%s", tag, resp.Status)
		return
	}
	log.Printf("level=info component=revalidate msg=\"revalidation triggered\" tag=%s", tag)
}

// ValidTag reports whether tag is one of the recognized revalidation tags.
func ValidTag(tag string) bool {
	return tag == TagProducts || tag == TagProductTypes
}
