package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lingobridge/lingobridge/internal/batch"
	"github.com/lingobridge/lingobridge/internal/cli"
	"github.com/lingobridge/lingobridge/internal/translation"
)

type batchResult struct {
	Text           string `json:"text"`
	TranslatedText string `json:"translated_text,omitempty"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Error          string `json:"error,omitempty"`
}

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall batch timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "batch requires exactly one JSON file argument")
		return 2
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", fs.Arg(0), err)
		return 1
	}
	file, err := batch.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid batch file: %v\n", err)
		return 2
	}

	cfg, logger, store, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	dispatcher := translation.NewDispatcher(store, logger, translation.Options{Workers: cfg.Workers})
	defer shutdownDispatcher(dispatcher)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Submit everything first; the worker pool bounds concurrency.
	handles := make([]*translation.Handle, len(file.Items))
	results := make([]batchResult, len(file.Items))
	for i, item := range file.Items {
		sourceLang, targetLang := file.Resolve(item)
		results[i] = batchResult{
			Text:       item.Text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		}
		handles[i] = dispatcher.Translate(item.Text, sourceLang, targetLang)
	}

	failed := 0
	for i, handle := range handles {
		translated, err := handle.Wait(ctx)
		if err != nil {
			results[i].Error = err.Error()
			failed++
			continue
		}
		results[i].TranslatedText = translated
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]any{
		"total":  len(results),
		"failed": failed,
		"items":  results,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
		return 1
	}

	if failed > 0 {
		return 1
	}
	return 0
}
