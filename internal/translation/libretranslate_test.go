package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lingobridge/lingobridge/internal/settings"
)

func TestLibreTranslateTranslate(t *testing.T) {
	t.Parallel()

	var gotPayload libreTranslateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"translatedText":"Ciao","alternatives":["Salve"]}`))
	}))
	defer server.Close()

	engine := NewLibreTranslateEngineWithEndpoint(server.URL)
	creds := settings.LibreTranslateCredentials{APIKey: "secret"}
	got, err := engine.Translate(context.Background(), "Hello", "auto", "it", creds)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got != "Ciao" {
		t.Fatalf("unexpected translation: %q", got)
	}
	if gotPayload.Q != "Hello" || gotPayload.Source != "auto" || gotPayload.Target != "it" {
		t.Fatalf("unexpected request payload: %+v", gotPayload)
	}
	if gotPayload.Format != "text" || gotPayload.APIKey != "secret" {
		t.Fatalf("unexpected request payload: %+v", gotPayload)
	}
}

func TestLibreTranslateMissingKey(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	engine := NewLibreTranslateEngineWithEndpoint(server.URL)
	_, err := engine.Translate(context.Background(), "Hello", "auto", "it", settings.LibreTranslateCredentials{})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
}

func TestLibreTranslateMissingTranslatedText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Please select two distinct languages"}`))
	}))
	defer server.Close()

	engine := NewLibreTranslateEngineWithEndpoint(server.URL)
	creds := settings.LibreTranslateCredentials{APIKey: "secret"}
	if _, err := engine.Translate(context.Background(), "Hello", "auto", "it", creds); err == nil {
		t.Fatal("expected error when translatedText is absent")
	}
}

func TestLibreTranslateErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid API key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	engine := NewLibreTranslateEngineWithEndpoint(server.URL)
	creds := settings.LibreTranslateCredentials{APIKey: "wrong"}
	if _, err := engine.Translate(context.Background(), "Hello", "auto", "it", creds); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
