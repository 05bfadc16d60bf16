package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
	"github.com/lingobridge/lingobridge/internal/translation"
)

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

func (s *Server) handleHealth(c echo.Context) error {
	snap := s.settings.Current()
	return success(c, map[string]any{
		"service": "lingobridge",
		"engine":  snap.Engine.String(),
		"enabled": snap.Enabled,
		"time":    time.Now().UTC(),
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var payload translateRequest
	if err := decodeJSONBody(c, &payload); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	if strings.TrimSpace(payload.Text) == "" {
		return failValidation(c, map[string]string{"text": "must not be blank"})
	}

	snap := s.settings.Current()

	sourceLang := language.NormalizeSource(payload.SourceLang)
	if strings.TrimSpace(payload.SourceLang) == "" {
		sourceLang = snap.SourceLanguage
	}
	if sourceLang == "" {
		return failValidation(c, map[string]string{"source_lang": "is not a valid language code"})
	}

	targetLang := language.NormalizeCode(payload.TargetLang)
	if strings.TrimSpace(payload.TargetLang) == "" {
		targetLang = snap.TargetLanguage
	}
	if targetLang == "" {
		return failValidation(c, map[string]string{"target_lang": "is not a valid language code"})
	}

	handle := s.dispatcher.Translate(payload.Text, sourceLang, targetLang)
	translated, err := handle.Wait(c.Request().Context())
	if err != nil {
		return s.translateFailure(c, err)
	}

	return success(c, map[string]any{
		"translated_text": translated,
		"source_lang":     sourceLang,
		"target_lang":     targetLang,
		"engine":          snap.Engine.String(),
	})
}

func (s *Server) translateFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, translation.ErrBlankText):
		return failValidation(c, map[string]string{"text": "must not be blank"})
	case errors.Is(err, translation.ErrDisabled):
		return fail(c, http.StatusServiceUnavailable, "Translation is disabled", nil)
	case errors.Is(err, translation.ErrShutdown):
		return fail(c, http.StatusServiceUnavailable, "Translation service is shutting down", nil)
	case errors.Is(err, translation.ErrMissingCredential):
		return fail(c, http.StatusBadGateway, err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away while waiting; the translation itself keeps
		// running and may still land in the cache.
		return fail(c, http.StatusGatewayTimeout, "Timed out waiting for translation", nil)
	default:
		return fail(c, http.StatusBadGateway, err.Error(), nil)
	}
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"source": language.SourceOptions(),
		"target": language.TargetOptions(),
	})
}

func (s *Server) handleCacheStats(c echo.Context) error {
	return success(c, map[string]any{
		"entries": s.dispatcher.CacheLen(),
	})
}

func (s *Server) handleCacheClear(c echo.Context) error {
	s.dispatcher.ClearCache()
	s.logger.Info().Msg("translation cache cleared")
	return success(c, map[string]any{
		"entries": s.dispatcher.CacheLen(),
	})
}

func (s *Server) handleCacheSweep(c echo.Context) error {
	removed := s.dispatcher.SweepCache()
	return success(c, map[string]any{
		"removed": removed,
		"entries": s.dispatcher.CacheLen(),
	})
}

type settingsResponse struct {
	Enabled        bool   `json:"enabled"`
	Engine         string `json:"engine"`
	EnableCache    bool   `json:"enable_cache"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`

	DeepL struct {
		APIKeySet  bool `json:"api_key_set"`
		UseFreeAPI bool `json:"use_free_api"`
	} `json:"deepl"`
	Azure struct {
		APIKeySet bool   `json:"api_key_set"`
		Region    string `json:"region"`
		Endpoint  string `json:"endpoint"`
	} `json:"azure"`
	LibreTranslate struct {
		APIKeySet bool `json:"api_key_set"`
	} `json:"libretranslate"`
}

func buildSettingsResponse(snap settings.Settings) settingsResponse {
	var resp settingsResponse
	resp.Enabled = snap.Enabled
	resp.Engine = snap.Engine.String()
	resp.EnableCache = snap.EnableCache
	resp.SourceLanguage = snap.SourceLanguage
	resp.TargetLanguage = snap.TargetLanguage
	resp.DeepL.APIKeySet = strings.TrimSpace(snap.DeepL.APIKey) != ""
	resp.DeepL.UseFreeAPI = snap.DeepL.UseFreeAPI
	resp.Azure.APIKeySet = strings.TrimSpace(snap.Azure.APIKey) != ""
	resp.Azure.Region = snap.Azure.Region
	resp.Azure.Endpoint = snap.Azure.Endpoint
	resp.LibreTranslate.APIKeySet = strings.TrimSpace(snap.LibreTranslate.APIKey) != ""
	return resp
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return success(c, map[string]any{
		"settings": buildSettingsResponse(s.settings.Current()),
	})
}

func (s *Server) handlePutSettings(c echo.Context) error {
	var payload map[string]json.RawMessage
	if err := decodeJSONBody(c, &payload); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if len(payload) == 0 {
		return failValidation(c, map[string]string{"body": "at least one settings field is required"})
	}
	for key := range payload {
		switch key {
		case "enabled", "engine", "enable_cache", "source_language", "target_language",
			"deepl_api_key", "deepl_use_free_api",
			"azure_api_key", "azure_region", "azure_endpoint",
			"libretranslate_api_key":
			// Supported.
		default:
			return failValidation(c, map[string]string{key: "is not a supported settings field"})
		}
	}

	next := s.settings.Current()

	if details := applySettingsPatch(&next, payload); details != nil {
		return failValidation(c, details)
	}

	updated, err := s.settings.Update(func(settings.Settings) settings.Settings {
		return next
	})
	if err != nil {
		return failValidation(c, map[string]string{"settings": err.Error()})
	}

	s.logger.Info().
		Str("engine", updated.Engine.String()).
		Bool("enabled", updated.Enabled).
		Bool("enable_cache", updated.EnableCache).
		Msg("settings updated")

	return success(c, map[string]any{
		"settings": buildSettingsResponse(updated),
	})
}

func applySettingsPatch(next *settings.Settings, payload map[string]json.RawMessage) map[string]string {
	decodeBool := func(raw json.RawMessage, field string, dest *bool) map[string]string {
		if err := json.Unmarshal(raw, dest); err != nil {
			return map[string]string{field: "must be a boolean"}
		}
		return nil
	}
	decodeString := func(raw json.RawMessage, field string, dest *string) map[string]string {
		if err := json.Unmarshal(raw, dest); err != nil {
			return map[string]string{field: "must be a string"}
		}
		return nil
	}

	if raw, ok := payload["enabled"]; ok {
		if details := decodeBool(raw, "enabled", &next.Enabled); details != nil {
			return details
		}
	}
	if raw, ok := payload["enable_cache"]; ok {
		if details := decodeBool(raw, "enable_cache", &next.EnableCache); details != nil {
			return details
		}
	}
	if raw, ok := payload["engine"]; ok {
		var name string
		if details := decodeString(raw, "engine", &name); details != nil {
			return details
		}
		engine, err := settings.ParseEngine(name)
		if err != nil {
			return map[string]string{"engine": err.Error()}
		}
		next.Engine = engine
	}
	if raw, ok := payload["source_language"]; ok {
		var code string
		if details := decodeString(raw, "source_language", &code); details != nil {
			return details
		}
		normalized := language.NormalizeSource(code)
		if normalized == "" {
			return map[string]string{"source_language": "is not a valid language code"}
		}
		next.SourceLanguage = normalized
	}
	if raw, ok := payload["target_language"]; ok {
		var code string
		if details := decodeString(raw, "target_language", &code); details != nil {
			return details
		}
		normalized := language.NormalizeCode(code)
		if normalized == "" {
			return map[string]string{"target_language": "is not a valid language code"}
		}
		next.TargetLanguage = normalized
	}
	if raw, ok := payload["deepl_api_key"]; ok {
		if details := decodeString(raw, "deepl_api_key", &next.DeepL.APIKey); details != nil {
			return details
		}
	}
	if raw, ok := payload["deepl_use_free_api"]; ok {
		if details := decodeBool(raw, "deepl_use_free_api", &next.DeepL.UseFreeAPI); details != nil {
			return details
		}
	}
	if raw, ok := payload["azure_api_key"]; ok {
		if details := decodeString(raw, "azure_api_key", &next.Azure.APIKey); details != nil {
			return details
		}
	}
	if raw, ok := payload["azure_region"]; ok {
		if details := decodeString(raw, "azure_region", &next.Azure.Region); details != nil {
			return details
		}
	}
	if raw, ok := payload["azure_endpoint"]; ok {
		if details := decodeString(raw, "azure_endpoint", &next.Azure.Endpoint); details != nil {
			return details
		}
	}
	if raw, ok := payload["libretranslate_api_key"]; ok {
		if details := decodeString(raw, "libretranslate_api_key", &next.LibreTranslate.APIKey); details != nil {
			return details
		}
	}
	return nil
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return fail(c, http.StatusNotFound, "Translation history is not configured", nil)
	}

	limit, err := parsePositiveInt(c.QueryParam("limit"), 25, 1, 200)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	rows, err := s.history.Recent(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query translation history failed")
		return internalError(c, "Failed to load translation history")
	}
	return success(c, map[string]any{
		"items": rows,
		"limit": limit,
	})
}

func parsePositiveInt(raw string, fallback, min, max int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	if value < min || value > max {
		return 0, errors.New("is out of range")
	}
	return value, nil
}
