package settings

import (
	"fmt"
	"strings"
)

// Engine identifies one of the supported translation backends. The set is
// closed: the dispatcher switches over it exhaustively.
type Engine string

const (
	EngineGoogle         Engine = "google"
	EngineDeepL          Engine = "deepl"
	EngineAzure          Engine = "azure"
	EngineLibreTranslate Engine = "libretranslate"
)

// Engines lists every supported engine in a stable order.
func Engines() []Engine {
	return []Engine{EngineGoogle, EngineDeepL, EngineAzure, EngineLibreTranslate}
}

// ParseEngine resolves an engine name. Names are case-insensitive and
// trimmed; unknown names are rejected.
func ParseEngine(raw string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "google":
		return EngineGoogle, nil
	case "deepl":
		return EngineDeepL, nil
	case "azure":
		return EngineAzure, nil
	case "libretranslate", "libre":
		return EngineLibreTranslate, nil
	default:
		return "", fmt.Errorf("unknown translation engine %q (available: google, deepl, azure, libretranslate)", strings.TrimSpace(raw))
	}
}

func (e Engine) String() string {
	return string(e)
}

// Valid reports whether the engine is one of the closed set.
func (e Engine) Valid() bool {
	switch e {
	case EngineGoogle, EngineDeepL, EngineAzure, EngineLibreTranslate:
		return true
	default:
		return false
	}
}
