package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge/internal/settings"
)

func testSettings() settings.Settings {
	return settings.Settings{
		Enabled:        true,
		Engine:         settings.EngineGoogle,
		EnableCache:    true,
		SourceLanguage: "auto",
		TargetLanguage: "es",
	}
}

func googleStub(t *testing.T, calls *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Write([]byte(`[[["Hola","Hello"]],null,"en"]`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestDispatcher(t *testing.T, store *settings.Store, opts Options) *Dispatcher {
	t.Helper()
	d := NewDispatcher(store, zerolog.Nop(), opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		d.Shutdown(ctx)
	})
	return d
}

func TestDispatcherTranslate(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 0)
	store := settings.NewStore(testSettings())
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint(server.URL)})

	handle := d.Translate("Hello", "auto", "es")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := handle.Wait(ctx)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got != "Hola" {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestDispatcherCacheHit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := googleStub(t, &calls, 0)
	store := settings.NewStore(testSettings())
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint(server.URL)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first, err := d.Translate("Hello", "auto", "es").Wait(ctx)
	if err != nil {
		t.Fatalf("first translate failed: %v", err)
	}
	second, err := d.Translate("Hello", "auto", "es").Wait(ctx)
	if err != nil {
		t.Fatalf("second translate failed: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned a different translation: %q vs %q", first, second)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one engine call, got %d", calls.Load())
	}
	if d.CacheLen() != 1 {
		t.Fatalf("unexpected cache size: %d", d.CacheLen())
	}
}

func TestDispatcherCacheDisabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := googleStub(t, &calls, 0)
	snap := testSettings()
	snap.EnableCache = false
	store := settings.NewStore(snap)
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint(server.URL)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		if _, err := d.Translate("Hello", "auto", "es").Wait(ctx); err != nil {
			t.Fatalf("translate %d failed: %v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two engine calls with cache disabled, got %d", calls.Load())
	}
	if d.CacheLen() != 0 {
		t.Fatalf("expected nothing cached, got %d entries", d.CacheLen())
	}
}

func TestDispatcherBlankText(t *testing.T) {
	t.Parallel()

	store := settings.NewStore(testSettings())
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint("http://unused.invalid")})

	_, err := d.Translate("   \n\t ", "auto", "es").Result()
	if !errors.Is(err, ErrBlankText) {
		t.Fatalf("expected ErrBlankText, got %v", err)
	}
}

func TestDispatcherDisabled(t *testing.T) {
	t.Parallel()

	snap := testSettings()
	snap.Enabled = false
	store := settings.NewStore(snap)
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint("http://unused.invalid")})

	_, err := d.Translate("Hello", "auto", "es").Result()
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestDispatcherUnknownEngine(t *testing.T) {
	t.Parallel()

	snap := testSettings()
	snap.Engine = "bing"
	store := settings.NewStore(snap)
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint("http://unused.invalid")})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := d.Translate("Hello", "auto", "es").Wait(ctx); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestDispatcherWorkerPoolBound(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte(`[[["Hola","Hello"]],null,"en"]`))
	}))
	defer server.Close()

	snap := testSettings()
	snap.EnableCache = false
	store := settings.NewStore(snap)
	d := newTestDispatcher(t, store, Options{
		Workers: 3,
		Google:  NewGoogleEngineWithEndpoint(server.URL),
	})

	handles := make([]*Handle, 0, 12)
	for i := 0; i < 12; i++ {
		handles = append(handles, d.Translate(fmt.Sprintf("Hello %d", i), "auto", "es"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i, handle := range handles {
		if _, err := handle.Wait(ctx); err != nil {
			t.Fatalf("translate %d failed: %v", i, err)
		}
	}
	if got := peak.Load(); got > 3 {
		t.Fatalf("worker pool exceeded its bound: peak concurrency %d", got)
	}
}

func TestDispatcherSubmitDoesNotBlock(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 50*time.Millisecond)
	snap := testSettings()
	snap.EnableCache = false
	store := settings.NewStore(snap)
	d := newTestDispatcher(t, store, Options{
		Workers: 1,
		Google:  NewGoogleEngineWithEndpoint(server.URL),
	})

	started := time.Now()
	handles := make([]*Handle, 0, 20)
	for i := 0; i < 20; i++ {
		handles = append(handles, d.Translate(fmt.Sprintf("Hello %d", i), "auto", "es"))
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("submission blocked for %v", elapsed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i, handle := range handles {
		if _, err := handle.Wait(ctx); err != nil {
			t.Fatalf("translate %d failed: %v", i, err)
		}
	}
}

func TestDispatcherShutdownRejectsNewWork(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 0)
	store := settings.NewStore(testSettings())
	d := NewDispatcher(store, zerolog.Nop(), Options{Google: NewGoogleEngineWithEndpoint(server.URL)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	_, err := d.Translate("Hello", "auto", "es").Result()
	if !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("second shutdown failed: %v", err)
	}
}

func TestDispatcherShutdownDrainsInFlightWork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := googleStub(t, &calls, 30*time.Millisecond)
	snap := testSettings()
	snap.EnableCache = false
	store := settings.NewStore(snap)
	d := NewDispatcher(store, zerolog.Nop(), Options{
		Workers: 2,
		Google:  NewGoogleEngineWithEndpoint(server.URL),
	})

	handles := make([]*Handle, 0, 4)
	for i := 0; i < 4; i++ {
		handles = append(handles, d.Translate(fmt.Sprintf("Hello %d", i), "auto", "es"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	for i, handle := range handles {
		select {
		case <-handle.Done():
		default:
			t.Fatalf("handle %d unresolved after shutdown", i)
		}
		if _, err := handle.Result(); err != nil {
			t.Fatalf("translate %d failed: %v", i, err)
		}
	}
	if calls.Load() != 4 {
		t.Fatalf("expected every queued job to run, got %d calls", calls.Load())
	}
}

func TestDispatcherShutdownGraceElapsed(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 2*time.Second)
	snap := testSettings()
	snap.EnableCache = false
	store := settings.NewStore(snap)
	d := NewDispatcher(store, zerolog.Nop(), Options{
		Workers: 1,
		Google:  NewGoogleEngineWithEndpoint(server.URL),
	})

	handle := d.Translate("Hello", "auto", "es")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); err == nil {
		t.Fatal("expected shutdown to report outstanding work")
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if _, err := handle.Wait(waitCtx); err == nil {
		t.Fatal("expected cancelled translation to fail")
	}
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []RecordedTranslation
}

func (r *captureRecorder) Record(ctx context.Context, entry RecordedTranslation) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return nil
}

func TestDispatcherRecordsTranslations(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 0)
	store := settings.NewStore(testSettings())
	recorder := &captureRecorder{}
	d := newTestDispatcher(t, store, Options{
		Google:   NewGoogleEngineWithEndpoint(server.URL),
		Recorder: recorder,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := d.Translate("Hello", "auto", "es").Wait(ctx); err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.entries) != 1 {
		t.Fatalf("expected one recorded translation, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.SourceText != "Hello" || entry.TranslatedText != "Hola" {
		t.Fatalf("unexpected recorded entry: %+v", entry)
	}
	if entry.Engine != "google" || entry.TargetLang != "es" {
		t.Fatalf("unexpected recorded entry: %+v", entry)
	}
}

func TestDispatcherClearAndSweepCache(t *testing.T) {
	t.Parallel()

	server := googleStub(t, nil, 0)
	store := settings.NewStore(testSettings())
	d := newTestDispatcher(t, store, Options{Google: NewGoogleEngineWithEndpoint(server.URL)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := d.Translate("Hello", "auto", "es").Wait(ctx); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if d.CacheLen() != 1 {
		t.Fatalf("expected one cached entry, got %d", d.CacheLen())
	}
	if removed := d.SweepCache(); removed != 0 {
		t.Fatalf("expected no expired entries, removed %d", removed)
	}
	d.ClearCache()
	if d.CacheLen() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", d.CacheLen())
	}
}
