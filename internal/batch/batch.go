// Package batch validates batch translation files against the v1 JSON
// Schema before any translation work starts.
package batch

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lingobridge/lingobridge/internal/language"
)

//go:embed batch.v1.schema.json
var batchSchemaJSON string

// Item is one text to translate. Language fields override the file-level
// defaults.
type Item struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

// File is a v1 batch translation file.
type File struct {
	Version    string `json:"version"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
	Items      []Item `json:"items"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// Parse validates raw against the v1 schema and semantic rules.
func Parse(raw []byte) (*File, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode batch JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize batch JSON: %w", err)
	}

	var file File
	if err := json.Unmarshal(normalized, &file); err != nil {
		return nil, fmt.Errorf("unmarshal batch file: %w", err)
	}

	if err := validateSemantics(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("batch.v1.schema.json", strings.NewReader(batchSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("batch.v1.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("file contains trailing content")
	}
	return value, nil
}

func validateSemantics(file *File) error {
	if file == nil {
		return fmt.Errorf("batch file is nil")
	}
	if strings.TrimSpace(file.Version) != "v1" {
		return fmt.Errorf("version must be v1")
	}
	if language.NormalizeCode(file.TargetLang) == "" {
		return fmt.Errorf("target_lang %q is not a valid language code", file.TargetLang)
	}
	if file.SourceLang != "" && language.NormalizeSource(file.SourceLang) == "" {
		return fmt.Errorf("source_lang %q is not a valid language code", file.SourceLang)
	}

	for i, item := range file.Items {
		if strings.TrimSpace(item.Text) == "" {
			return fmt.Errorf("items[%d].text must not be blank", i)
		}
		if item.TargetLang != "" && language.NormalizeCode(item.TargetLang) == "" {
			return fmt.Errorf("items[%d].target_lang %q is not a valid language code", i, item.TargetLang)
		}
		if item.SourceLang != "" && language.NormalizeSource(item.SourceLang) == "" {
			return fmt.Errorf("items[%d].source_lang %q is not a valid language code", i, item.SourceLang)
		}
	}
	return nil
}

// Resolve returns the effective language pair for one item.
func (f *File) Resolve(item Item) (sourceLang, targetLang string) {
	sourceLang = language.NormalizeSource(item.SourceLang)
	if sourceLang == "" {
		sourceLang = language.NormalizeSource(f.SourceLang)
	}
	if sourceLang == "" {
		sourceLang = language.Auto
	}

	targetLang = language.NormalizeCode(item.TargetLang)
	if targetLang == "" {
		targetLang = language.NormalizeCode(f.TargetLang)
	}
	return sourceLang, targetLang
}
