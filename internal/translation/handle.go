package translation

import (
	"context"
	"sync"
)

// Handle is the asynchronous result of one translation request. It resolves
// exactly once, either with the translated text or with an error.
type Handle struct {
	done chan struct{}
	once sync.Once

	text string
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Done is closed once the handle has resolved.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the handle resolves.
func (h *Handle) Result() (string, error) {
	<-h.done
	return h.text, h.err
}

// Wait blocks until the handle resolves or the context ends. The underlying
// translation keeps running after a context cancellation; only Shutdown
// cancels in-flight work.
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case <-h.done:
		return h.text, h.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *Handle) resolve(text string) {
	h.once.Do(func() {
		h.text = text
		close(h.done)
	})
}

func (h *Handle) reject(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

func resolvedHandle(text string) *Handle {
	h := newHandle()
	h.resolve(text)
	return h
}

func rejectedHandle(err error) *Handle {
	h := newHandle()
	h.reject(err)
	return h
}
