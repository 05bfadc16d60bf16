package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	TranslationEnabled bool   `envconfig:"TRANSLATION_ENABLED" default:"true"`
	TranslatorEngine   string `envconfig:"TRANSLATOR_ENGINE" default:"google"`
	EnableCache        bool   `envconfig:"ENABLE_CACHE" default:"true"`
	SourceLanguage     string `envconfig:"SOURCE_LANGUAGE" default:"auto"`
	TargetLanguage     string `envconfig:"TARGET_LANGUAGE" default:"en"`
	Workers            int    `envconfig:"TRANSLATION_WORKERS" default:"3"`

	DeepLAPIKey     string `envconfig:"DEEPL_API_KEY" default:""`
	DeepLUseFreeAPI bool   `envconfig:"DEEPL_USE_FREE_API" default:"true"`

	AzureAPIKey   string `envconfig:"AZURE_API_KEY" default:""`
	AzureRegion   string `envconfig:"AZURE_REGION" default:"global"`
	AzureEndpoint string `envconfig:"AZURE_ENDPOINT" default:"https://api.cognitive.microsofttranslator.com"`

	LibreTranslateAPIKey string `envconfig:"LIBRETRANSLATE_API_KEY" default:""`

	// DatabaseURL enables the optional translation history store.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := settings.ParseEngine(c.TranslatorEngine); err != nil {
		return fmt.Errorf("TRANSLATOR_ENGINE: %w", err)
	}
	if language.NormalizeSource(c.SourceLanguage) == "" {
		return fmt.Errorf("SOURCE_LANGUAGE %q is not a valid language code", c.SourceLanguage)
	}
	if language.NormalizeCode(c.TargetLanguage) == "" {
		return fmt.Errorf("TARGET_LANGUAGE %q is not a valid language code", c.TargetLanguage)
	}
	if c.Workers < 1 {
		return fmt.Errorf("TRANSLATION_WORKERS must be >= 1")
	}
	return nil
}

// Settings builds the initial runtime settings snapshot.
func (c *Config) Settings() (settings.Settings, error) {
	engine, err := settings.ParseEngine(c.TranslatorEngine)
	if err != nil {
		return settings.Settings{}, err
	}

	snapshot := settings.Settings{
		Enabled:        c.TranslationEnabled,
		Engine:         engine,
		EnableCache:    c.EnableCache,
		SourceLanguage: language.NormalizeSource(c.SourceLanguage),
		TargetLanguage: language.NormalizeCode(c.TargetLanguage),
		DeepL: settings.DeepLCredentials{
			APIKey:     strings.TrimSpace(c.DeepLAPIKey),
			UseFreeAPI: c.DeepLUseFreeAPI,
		},
		Azure: settings.AzureCredentials{
			APIKey:   strings.TrimSpace(c.AzureAPIKey),
			Region:   strings.TrimSpace(c.AzureRegion),
			Endpoint: strings.TrimSpace(c.AzureEndpoint),
		},
		LibreTranslate: settings.LibreTranslateCredentials{
			APIKey: strings.TrimSpace(c.LibreTranslateAPIKey),
		},
	}
	if err := snapshot.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return snapshot, nil
}
