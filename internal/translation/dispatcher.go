// Package translation coordinates translation requests across four remote
// engines, behind a fixed-size worker pool and a TTL result cache.
package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge/internal/settings"
)

const (
	// DefaultWorkers bounds concurrent outbound engine calls.
	DefaultWorkers = 3
	// DefaultSweepInterval is the period of the background cache sweep;
	// the first sweep runs one interval after construction.
	DefaultSweepInterval = 5 * time.Minute
	// DefaultShutdownGrace bounds how long Shutdown waits for in-flight
	// work before cancelling it.
	DefaultShutdownGrace = 5 * time.Second

	engineCallTimeout = 15 * time.Second
)

// RecordedTranslation describes one completed translation for optional
// persistence.
type RecordedTranslation struct {
	SourceLang     string
	TargetLang     string
	SourceText     string
	TranslatedText string
	Engine         string
	Latency        time.Duration
}

// Recorder receives completed translations. Recording is best-effort: a
// recorder failure never fails the translation.
type Recorder interface {
	Record(ctx context.Context, entry RecordedTranslation) error
}

// Options tunes a Dispatcher. Zero values select defaults; engine fields
// exist so tests can point adapters at local servers.
type Options struct {
	Workers       int
	CacheTTL      time.Duration
	SweepInterval time.Duration
	Recorder      Recorder

	Google *GoogleEngine
	DeepL  *DeepLEngine
	Azure  *AzureEngine
	Libre  *LibreTranslateEngine
}

// Dispatcher validates requests, consults the cache, and runs engine calls
// on a fixed pool of workers. It owns the periodic cache sweep for its
// lifetime.
type Dispatcher struct {
	settings *settings.Store
	cache    *Cache
	logger   zerolog.Logger
	recorder Recorder

	google *GoogleEngine
	deepl  *DeepLEngine
	azure  *AzureEngine
	libre  *LibreTranslateEngine

	jobs    chan *job
	workers sync.WaitGroup
	pending sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	sweepInterval time.Duration
	sweepStopped  chan struct{}

	mu     sync.Mutex
	closed bool
}

type job struct {
	text       string
	sourceLang string
	targetLang string
	key        string
	handle     *Handle
}

// NewDispatcher builds a dispatcher and starts its workers and sweep loop.
func NewDispatcher(store *settings.Store, logger zerolog.Logger, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	sweepInterval := opts.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	google := opts.Google
	if google == nil {
		google = NewGoogleEngine()
	}
	deepl := opts.DeepL
	if deepl == nil {
		deepl = NewDeepLEngine()
	}
	azure := opts.Azure
	if azure == nil {
		azure = NewAzureEngine()
	}
	libre := opts.Libre
	if libre == nil {
		libre = NewLibreTranslateEngine()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		settings:      store,
		cache:         NewCache(opts.CacheTTL),
		logger:        logger,
		recorder:      opts.Recorder,
		google:        google,
		deepl:         deepl,
		azure:         azure,
		libre:         libre,
		jobs:          make(chan *job, workers*8),
		baseCtx:       ctx,
		cancel:        cancel,
		sweepInterval: sweepInterval,
		sweepStopped:  make(chan struct{}),
	}

	d.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	go d.sweepLoop()

	return d
}

// Translate submits one request and returns immediately with its handle.
// Blank text and disabled translation resolve the handle synchronously.
func (d *Dispatcher) Translate(text, sourceLang, targetLang string) *Handle {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return rejectedHandle(ErrBlankText)
	}

	snap := d.settings.Current()
	if !snap.Enabled {
		return rejectedHandle(ErrDisabled)
	}

	key := CacheKey(sourceLang, targetLang, trimmed)
	if snap.EnableCache {
		if entry, ok := d.cache.Get(key); ok {
			d.logger.Debug().
				Str("source_lang", sourceLang).
				Str("target_lang", targetLang).
				Msg("translation cache hit")
			return resolvedHandle(entry.Translation)
		}
	}

	j := &job{
		text:       trimmed,
		sourceLang: sourceLang,
		targetLang: targetLang,
		key:        key,
		handle:     newHandle(),
	}
	d.submit(j)
	return j.handle
}

func (d *Dispatcher) submit(j *job) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		j.handle.reject(ErrShutdown)
		return
	}
	d.pending.Add(1)
	d.mu.Unlock()

	select {
	case d.jobs <- j:
	default:
		// Queue is full; park the enqueue off the caller's goroutine so
		// submission stays non-blocking. Worker concurrency is still
		// bounded by the pool.
		go func() {
			select {
			case d.jobs <- j:
			case <-d.baseCtx.Done():
				j.handle.reject(ErrShutdown)
				d.pending.Done()
			}
		}()
	}
}

func (d *Dispatcher) worker() {
	defer d.workers.Done()
	for {
		select {
		case <-d.baseCtx.Done():
			return
		case j := <-d.jobs:
			d.run(j)
			d.pending.Done()
		}
	}
}

func (d *Dispatcher) run(j *job) {
	// Engine choice and credentials are read at execution time so
	// configuration changes apply to queued work too.
	snap := d.settings.Current()

	ctx, cancel := context.WithTimeout(d.baseCtx, engineCallTimeout)
	defer cancel()

	started := time.Now()
	translated, err := d.callEngine(ctx, snap, j)
	latency := time.Since(started)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("engine", snap.Engine.String()).
			Str("source_lang", j.sourceLang).
			Str("target_lang", j.targetLang).
			Msg("translation failed")
		j.handle.reject(fmt.Errorf("translate via %s: %w", snap.Engine, err))
		return
	}

	if snap.EnableCache {
		d.cache.Put(j.key, translated)
	}
	d.record(ctx, snap, j, translated, latency)

	d.logger.Debug().
		Str("engine", snap.Engine.String()).
		Str("source_lang", j.sourceLang).
		Str("target_lang", j.targetLang).
		Dur("latency", latency).
		Msg("translation completed")
	j.handle.resolve(translated)
}

func (d *Dispatcher) callEngine(ctx context.Context, snap settings.Settings, j *job) (string, error) {
	switch snap.Engine {
	case settings.EngineGoogle:
		return d.google.Translate(ctx, j.text, j.sourceLang, j.targetLang)
	case settings.EngineDeepL:
		return d.deepl.Translate(ctx, j.text, j.sourceLang, j.targetLang, snap.DeepL)
	case settings.EngineAzure:
		return d.azure.Translate(ctx, j.text, j.sourceLang, j.targetLang, snap.Azure)
	case settings.EngineLibreTranslate:
		return d.libre.Translate(ctx, j.text, j.sourceLang, j.targetLang, snap.LibreTranslate)
	default:
		return "", fmt.Errorf("unknown translation engine %q", string(snap.Engine))
	}
}

func (d *Dispatcher) record(ctx context.Context, snap settings.Settings, j *job, translated string, latency time.Duration) {
	if d.recorder == nil {
		return
	}
	err := d.recorder.Record(ctx, RecordedTranslation{
		SourceLang:     j.sourceLang,
		TargetLang:     j.targetLang,
		SourceText:     j.text,
		TranslatedText: translated,
		Engine:         snap.Engine.String(),
		Latency:        latency,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("record translation failed")
	}
}

func (d *Dispatcher) sweepLoop() {
	defer close(d.sweepStopped)

	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.baseCtx.Done():
			return
		case <-ticker.C:
			if removed := d.cache.Sweep(); removed > 0 {
				d.logger.Debug().Int("removed", removed).Msg("cache sweep")
			}
		}
	}
}

// ClearCache removes every cached translation.
func (d *Dispatcher) ClearCache() {
	d.cache.Clear()
}

// SweepCache removes expired entries immediately and returns the count.
func (d *Dispatcher) SweepCache() int {
	return d.cache.Sweep()
}

// CacheLen reports the number of stored cache entries.
func (d *Dispatcher) CacheLen() int {
	return d.cache.Len()
}

// Shutdown stops accepting work, waits for in-flight translations until the
// context ends (or DefaultShutdownGrace when the context has no deadline),
// then cancels whatever is still outstanding. Queued jobs that never ran
// resolve with ErrShutdown.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultShutdownGrace)
		defer cancel()
	}

	drained := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = fmt.Errorf("shutdown grace elapsed with translations outstanding: %w", ctx.Err())
	}

	d.cancel()
	d.workers.Wait()
	<-d.sweepStopped

	// Workers are gone; reject anything still queued until every submitted
	// job has been accounted for.
	settled := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(settled)
	}()
	for {
		select {
		case j := <-d.jobs:
			j.handle.reject(ErrShutdown)
			d.pending.Done()
		case <-settled:
			return err
		}
	}
}
