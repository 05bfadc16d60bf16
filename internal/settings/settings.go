// Package settings holds the runtime translation configuration. The
// dispatcher reads a fresh snapshot on every request, so updates made over
// the API take effect immediately without a restart.
package settings

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// DeepLCredentials configures the DeepL engine.
type DeepLCredentials struct {
	APIKey     string `json:"api_key"`
	UseFreeAPI bool   `json:"use_free_api"`
}

// AzureCredentials configures the Azure Translator engine.
type AzureCredentials struct {
	APIKey   string `json:"api_key"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
}

// LibreTranslateCredentials configures the LibreTranslate engine.
type LibreTranslateCredentials struct {
	APIKey string `json:"api_key"`
}

// Settings is one immutable snapshot of the runtime configuration.
type Settings struct {
	Enabled        bool
	Engine         Engine
	EnableCache    bool
	SourceLanguage string
	TargetLanguage string

	DeepL          DeepLCredentials
	Azure          AzureCredentials
	LibreTranslate LibreTranslateCredentials
}

// Validate checks snapshot invariants shared by every engine.
func (s Settings) Validate() error {
	if !s.Engine.Valid() {
		return fmt.Errorf("unknown translation engine %q", string(s.Engine))
	}
	if strings.TrimSpace(s.TargetLanguage) == "" {
		return fmt.Errorf("target language is required")
	}
	return nil
}

// Store publishes settings snapshots to concurrent readers. Reads never
// block writers and writers replace the snapshot wholesale.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore seeds a store with an initial snapshot.
func NewStore(initial Settings) *Store {
	store := &Store{}
	snapshot := initial
	store.current.Store(&snapshot)
	return store
}

// Current returns the live snapshot. The returned value is a copy; callers
// may not mutate shared state through it.
func (s *Store) Current() Settings {
	if s == nil {
		return Settings{}
	}
	snapshot := s.current.Load()
	if snapshot == nil {
		return Settings{}
	}
	return *snapshot
}

// Update applies mutate to a copy of the current snapshot and publishes the
// result if it validates.
func (s *Store) Update(mutate func(Settings) Settings) (Settings, error) {
	if s == nil {
		return Settings{}, fmt.Errorf("settings store is nil")
	}
	if mutate == nil {
		return s.Current(), nil
	}

	next := mutate(s.Current())
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	s.current.Store(&next)
	return next, nil
}
