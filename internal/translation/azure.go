package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
)

// DefaultAzureEndpoint is the global Azure Translator endpoint; regional
// deployments override it through credentials.
const DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"

const azureAPIVersion = "3.0"

// AzureEngine calls the Azure Cognitive Services Translator v3 API.
type AzureEngine struct {
	client *http.Client
}

func NewAzureEngine() *AzureEngine {
	return &AzureEngine{client: newHTTPClient()}
}

type azureRequestItem struct {
	Text string `json:"Text"`
}

type azureResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (e *AzureEngine) Translate(ctx context.Context, text, sourceLang, targetLang string, creds settings.AzureCredentials) (string, error) {
	key := strings.TrimSpace(creds.APIKey)
	if key == "" {
		return "", fmt.Errorf("%w: azure api key", ErrMissingCredential)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(creds.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultAzureEndpoint
	}

	query := url.Values{}
	query.Set("api-version", azureAPIVersion)
	query.Set("to", language.NormalizeCode(targetLang))
	// Omitting "from" asks Azure to detect the source language.
	if !language.IsAuto(sourceLang) {
		query.Set("from", language.NormalizeCode(sourceLang))
	}

	body, err := json.Marshal([]azureRequestItem{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("marshal azure request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/translate?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build azure request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", key)
	req.Header.Set("Ocp-Apim-Subscription-Region", strings.TrimSpace(creds.Region))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ClientTraceId", uuid.NewString())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send azure request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read azure response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure translator status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed []azureResponseItem
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode azure response: %w", err)
	}
	if len(parsed) == 0 {
		return "", fmt.Errorf("azure translator returned an empty result")
	}
	if len(parsed[0].Translations) == 0 {
		return "", fmt.Errorf("azure translator returned no translations")
	}
	return parsed[0].Translations[0].Text, nil
}
