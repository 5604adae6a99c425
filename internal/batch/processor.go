package batch

import (
	"context"
	"sync"
	"time"

	"stockstudio/internal/domain"
	"stockstudio/internal/infra"
	"stockstudio/internal/providers/metadata"
)

// AssetReader loads staged asset bytes by storage key.
type AssetReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// ProcessorOptions wires the processor's collaborators. Assets is optional;
// without it the generator only sees filenames.
type ProcessorOptions struct {
	Store     *Store
	Generator metadata.Generator
	Assets    AssetReader
	Logger    infra.Logger
}

// Processor drives a batch run: strictly sequential, one item in flight,
// fixed delay between items, every failure categorized and contained to its
// item. A run snapshots its configuration at Start; later edits only affect
// later runs.
type Processor struct {
	store     *Store
	generator metadata.Generator
	assets    AssetReader
	log       infra.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewProcessor(opts ProcessorOptions) *Processor {
	return &Processor{
		store:     opts.Store,
		generator: opts.Generator,
		assets:    opts.Assets,
		log:       opts.Logger,
	}
}

// Running reports whether a run is currently active.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start validates the configuration, snapshots it and launches the run loop.
// It returns ErrRunActive while a run is in progress, ErrNoGenerator when no
// provider is wired, and ErrNoPendingItems for a queue with nothing to do.
func (p *Processor) Start(cfg domain.BatchConfig) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}
	if p.generator == nil {
		return domain.ErrNoGenerator
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return domain.ErrRunActive
	}
	if p.store.PendingCount() == 0 {
		return domain.ErrNoPendingItems
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.run(ctx, cfg)
	return nil
}

// Stop requests a halt. The dispatched completion call, if any, is never
// interrupted: the in-flight item settles normally and the loop exits before
// dispatching the next item. Stop does not wait for the loop.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current run loop exits. No-op when idle.
func (p *Processor) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Processor) run(ctx context.Context, cfg domain.BatchConfig) {
	defer func() {
		p.store.ResetInFlight()
		p.mu.Lock()
		p.running = false
		p.cancel = nil
		close(p.done)
		p.mu.Unlock()
	}()

	p.log.Info().
		Str("provider", p.generator.Name()).
		Str("platform", string(cfg.Platform)).
		Int("pending", p.store.PendingCount()).
		Msg("batch run started")

	authWarned := false
	processed := 0
	for {
		if ctx.Err() != nil {
			p.log.Info().Int("processed", processed).Msg("batch run stopped")
			return
		}
		item, ok := p.store.NextPending()
		if !ok {
			p.log.Info().Int("processed", processed).Msg("batch run drained")
			return
		}
		if err := p.store.MarkProcessing(item.ID); err != nil {
			p.log.Error().Err(err).Str("item_id", item.ID).Msg("dispatch failed")
			return
		}
		p.processOne(ctx, item, cfg, &authWarned)
		processed++

		if ctx.Err() != nil {
			p.log.Info().Int("processed", processed).Msg("batch run stopped")
			return
		}
		if _, more := p.store.NextPending(); !more {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(cfg.ItemDelay()):
		}
	}
}

func (p *Processor) processOne(ctx context.Context, item domain.WorkItem, cfg domain.BatchConfig, authWarned *bool) {
	req := metadata.Request{
		Filename: item.Filename,
		MimeType: item.MimeType,
		Config:   cfg,
	}
	// Stop is checked between items only. A dispatched call runs to its
	// verdict, so the run context's cancellation must not reach it.
	callCtx := context.WithoutCancel(ctx)
	if p.assets != nil && item.StorageKey != "" {
		data, err := p.assets.Read(callCtx, item.StorageKey)
		if err != nil {
			p.log.Warn().Err(err).Str("item_id", item.ID).Msg("asset bytes unavailable, using filename only")
		} else {
			req.Data = data
		}
	}

	started := time.Now()
	result, err := p.generator.Generate(callCtx, req)
	if err == nil && !cfg.MeetsProfile(result) {
		err = &metadata.Error{
			Kind:    domain.KindEmptyResponse,
			Message: "provider returned no usable metadata for the selected platform",
		}
	}
	if err != nil {
		detail := metadata.Classify(err)
		if setErr := p.store.Fail(item.ID, detail); setErr != nil {
			p.log.Error().Err(setErr).Str("item_id", item.ID).Msg("record failure")
		}
		event := p.log.Warn().
			Str("item_id", item.ID).
			Str("filename", item.Filename).
			Str("kind", string(detail.Kind)).
			Dur("elapsed", time.Since(started))
		if detail.Kind == domain.KindAuthFailure && !*authWarned {
			*authWarned = true
			event = event.Bool("check_credentials", true)
		}
		event.Msg("item failed")
		return
	}

	cfg.ApplyAffixes(result)
	if err := p.store.Complete(item.ID, result); err != nil {
		p.log.Error().Err(err).Str("item_id", item.ID).Msg("record result")
		return
	}
	p.log.Info().
		Str("item_id", item.ID).
		Str("filename", item.Filename).
		Int("keywords", len(result.Keywords)).
		Dur("elapsed", time.Since(started)).
		Msg("item completed")
}
