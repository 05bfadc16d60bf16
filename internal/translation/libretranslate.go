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

// DefaultLibreTranslateEndpoint is the public LibreTranslate instance.
const DefaultLibreTranslateEndpoint = "https://libretranslate.com/translate"

// LibreTranslateEngine calls a LibreTranslate server.
type LibreTranslateEngine struct {
	endpoint string
	client   *http.Client
}

func NewLibreTranslateEngine() *LibreTranslateEngine {
	return NewLibreTranslateEngineWithEndpoint(DefaultLibreTranslateEndpoint)
}

// NewLibreTranslateEngineWithEndpoint builds an engine against a custom
// endpoint, typically a self-hosted instance.
func NewLibreTranslateEngineWithEndpoint(endpoint string) *LibreTranslateEngine {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = DefaultLibreTranslateEndpoint
	}
	return &LibreTranslateEngine{
		endpoint: trimmed,
		client:   newHTTPClient(),
	}
}

type libreTranslateRequest struct {
	Q            string `json:"q"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Format       string `json:"format"`
	Alternatives int    `json:"alternatives"`
	APIKey       string `json:"api_key"`
}

func (e *LibreTranslateEngine) Translate(ctx context.Context, text, sourceLang, targetLang string, creds settings.LibreTranslateCredentials) (string, error) {
	key := strings.TrimSpace(creds.APIKey)
	if key == "" {
		return "", fmt.Errorf("%w: libretranslate api key", ErrMissingCredential)
	}

	body, err := json.Marshal(libreTranslateRequest{
		Q:            text,
		Source:       language.NormalizeSource(sourceLang),
		Target:       language.NormalizeCode(targetLang),
		Format:       "text",
		Alternatives: 3,
		APIKey:       key,
	})
	if err != nil {
		return "", fmt.Errorf("marshal libretranslate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build libretranslate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read libretranslate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("libretranslate status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode libretranslate response: %w", err)
	}
	raw, ok := parsed["translatedText"]
	if !ok {
		return "", fmt.Errorf("libretranslate response is missing translatedText")
	}
	var translated string
	if err := json.Unmarshal(raw, &translated); err != nil {
		return "", fmt.Errorf("decode libretranslate translatedText: %w", err)
	}
	return translated, nil
}
