package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/lingobridge/lingobridge/internal/language"
	"github.com/lingobridge/lingobridge/internal/settings"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "languages does not accept positional args")
		return 2
	}

	fmt.Println("Engines:")
	for _, engine := range settings.Engines() {
		fmt.Printf("  %s\n", engine)
	}

	fmt.Println()
	fmt.Println("Languages:")
	fmt.Printf("  %-6s %s\n", language.Auto, "Detect automatically (source only)")
	for _, option := range language.TargetOptions() {
		fmt.Printf("  %-6s %s (%s)\n", option.Code, option.Label, option.Native)
	}
	return 0
}
