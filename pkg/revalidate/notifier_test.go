package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookPostsSecretAndTag(t *testing.T) {
	var got revalidationRequest
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("expected JSON payload, got %v", err)
		}
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL+"/", "secreto-123")
	webhook.Notify(context.Background(), TagProducts)

	if path != "/api/revalidate" {
		t.Fatalf("expected /api/revalidate, got %q", path)
	}
	if got.Secret != "secreto-123" || got.Tag != TagProducts {
		t.Fatalf("expected secret and tag forwarded, got %+v", got)
	}
}

func TestWebhookSwallowsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// Must return normally: failures never propagate to the write.
	NewWebhook(server.URL, "clave-equivocada").Notify(context.Background(), TagProductTypes)
}

func TestWebhookSwallowsTransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	NewWebhook(server.URL, "secreto-123").Notify(context.Background(), TagProducts)
}

func TestValidTag(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{TagProducts, true},
		{TagProductTypes, true},
		{"", false},
		{"productos", false},
		{"Products", false},
	}

	for _, tt := range tests {
		if got := ValidTag(tt.tag); got != tt.want {
			t.Fatalf("ValidTag(%q): expected %t, got %t", tt.tag, tt.want, got)
		}
	}
}
