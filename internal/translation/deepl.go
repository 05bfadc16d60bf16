package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
)

const (
	// DefaultDeepLFreeEndpoint serves free-tier API keys.
	DefaultDeepLFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	// DefaultDeepLProEndpoint serves paid API keys.
	DefaultDeepLProEndpoint = "https://api.deepl.com/v2/translate"
)

// DeepLEngine calls the official DeepL v2 translate API. The free/pro
// endpoint is chosen per request from the credentials' free-tier toggle.
type DeepLEngine struct {
	freeEndpoint string
	proEndpoint  string
	client       *http.Client
}

func NewDeepLEngine() *DeepLEngine {
	return NewDeepLEngineWithEndpoints(DefaultDeepLFreeEndpoint, DefaultDeepLProEndpoint)
}

// NewDeepLEngineWithEndpoints builds an engine against custom endpoints.
func NewDeepLEngineWithEndpoints(freeEndpoint, proEndpoint string) *DeepLEngine {
	free := strings.TrimSpace(freeEndpoint)
	if free == "" {
		free = DefaultDeepLFreeEndpoint
	}
	pro := strings.TrimSpace(proEndpoint)
	if pro == "" {
		pro = DefaultDeepLProEndpoint
	}
	return &DeepLEngine{
		freeEndpoint: free,
		proEndpoint:  pro,
		client:       newHTTPClient(),
	}
}

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (e *DeepLEngine) Translate(ctx context.Context, text, sourceLang, targetLang string, creds settings.DeepLCredentials) (string, error) {
	key := strings.TrimSpace(creds.APIKey)
	if key == "" {
		return "", fmt.Errorf("%w: deepl api key", ErrMissingCredential)
	}

	endpoint := e.proEndpoint
	if creds.UseFreeAPI {
		endpoint = e.freeEndpoint
	}

	payload := deeplRequest{
		Text:       []string{text},
		TargetLang: deeplLangCode(targetLang),
	}
	// DeepL detects the source language when source_lang is omitted.
	if !language.IsAuto(sourceLang) {
		payload.SourceLang = deeplLangCode(sourceLang)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal deepl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build deepl request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send deepl request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read deepl response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepl status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed deeplResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode deepl response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", fmt.Errorf("deepl returned no translations")
	}
	return parsed.Translations[0].Text, nil
}

// deeplLangCode converts a normalized code to DeepL's uppercase form.
// A few languages have fixed canonical codes regardless of regional tags.
func deeplLangCode(code string) string {
	switch normalized := language.NormalizeCode(code); normalized {
	case "en":
		return "EN"
	case "zh":
		return "ZH"
	case "pt":
		return "PT"
	default:
		return strings.ToUpper(normalized)
	}
}
