package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lingobridge/lingobridge/internal/language"
)

// DefaultGoogleEndpoint is the unofficial public Google Translate endpoint.
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleEngine calls the unauthenticated Google Translate endpoint. The
// response is a nested array; long input may come back split into several
// segments that must be concatenated in order.
type GoogleEngine struct {
	endpoint string
	client   *http.Client
}

func NewGoogleEngine() *GoogleEngine {
	return NewGoogleEngineWithEndpoint(DefaultGoogleEndpoint)
}

// NewGoogleEngineWithEndpoint builds an engine against a custom endpoint.
func NewGoogleEngineWithEndpoint(endpoint string) *GoogleEngine {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = DefaultGoogleEndpoint
	}
	return &GoogleEngine{
		endpoint: trimmed,
		client:   newHTTPClient(),
	}
}

func (e *GoogleEngine) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", language.NormalizeSource(sourceLang))
	query.Set("tl", language.NormalizeCode(targetLang))
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build google translate request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send google translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read google translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse extracts the translation from the nested-array payload
// [[["Hola","Hello",...],["mundo","world",...]],...]: element 0 of every
// segment in the first array, concatenated.
func parseGoogleResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode google translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("google translate response is empty")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode google translate segments: %w", err)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("google translate response has no segments")
	}

	var out strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			return "", fmt.Errorf("google translate response segment is empty")
		}
		var piece string
		if err := json.Unmarshal(segment[0], &piece); err != nil {
			return "", fmt.Errorf("decode google translate segment text: %w", err)
		}
		out.WriteString(piece)
	}
	return out.String(), nil
}
