package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lingobridge/lingobridge/internal/cli"
	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
	"github.com/lingobridge/lingobridge/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	from := fs.String("from", "", "Source language code (default: configured source language)")
	to := fs.String("to", "", "Target language code (default: configured target language)")
	engineName := fs.String("engine", "", "Engine override (google, deepl, azure, libretranslate)")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "translate requires the text to translate")
		return 2
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "text to translate must not be blank")
		return 2
	}

	cfg, logger, store, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if strings.TrimSpace(*engineName) != "" {
		engine, err := settings.ParseEngine(*engineName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if _, err := store.Update(func(s settings.Settings) settings.Settings {
			s.Engine = engine
			return s
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	snap := store.Current()
	sourceLang := language.NormalizeSource(*from)
	if strings.TrimSpace(*from) == "" {
		sourceLang = snap.SourceLanguage
	}
	if sourceLang == "" {
		fmt.Fprintln(os.Stderr, "--from must be a valid language code")
		return 2
	}
	targetLang := language.NormalizeCode(*to)
	if strings.TrimSpace(*to) == "" {
		targetLang = snap.TargetLanguage
	}
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--to must be a valid language code")
		return 2
	}

	dispatcher := translation.NewDispatcher(store, logger, translation.Options{Workers: cfg.Workers})
	defer shutdownDispatcher(dispatcher)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	translated, err := dispatcher.Translate(text, sourceLang, targetLang).Wait(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translation failed: %v\n", err)
		return 1
	}

	fmt.Println(translated)
	return 0
}

func shutdownDispatcher(dispatcher *translation.Dispatcher) {
	ctx, cancel := context.WithTimeout(context.Background(), translation.DefaultShutdownGrace)
	defer cancel()
	_ = dispatcher.Shutdown(ctx)
}
