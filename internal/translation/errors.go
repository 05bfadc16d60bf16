package translation

import "errors"

var (
	// ErrBlankText rejects empty or whitespace-only input before any
	// cache or network access.
	ErrBlankText = errors.New("text to translate must not be blank")

	// ErrDisabled is returned while translation is switched off in settings.
	ErrDisabled = errors.New("translation is disabled")

	// ErrShutdown is returned for requests submitted after Shutdown.
	ErrShutdown = errors.New("translation service is shut down")

	// ErrMissingCredential wraps per-engine credential failures. Engines
	// return it before making any network call.
	ErrMissingCredential = errors.New("missing credential")
)
