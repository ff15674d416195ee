package encounter

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultResultBuffer is the capacity of a subscriber's result channel.
const defaultResultBuffer = 64

// Scheduler drives combat ticks. On a fixed interval it asks the engine for
// every due encounter and dispatches each to a bounded worker pool; a pass
// waits for all of its ticks before the next pass begins, so an encounter is
// never ticked twice concurrently.
type Scheduler struct {
	engine   *Engine
	logger   *zap.Logger
	interval time.Duration
	workers  int

	mu          sync.Mutex
	subscribers []chan TickResult

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler. interval is the pass cadence
// (typically well under the combat tick interval so ticks land close to
// their due time); workers bounds concurrent tick resolution.
func NewScheduler(engine *Engine, interval time.Duration, workers int, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	if workers <= 0 {
		workers = 8
	}
	return &Scheduler{
		engine:   engine,
		logger:   logger,
		interval: interval,
		workers:  workers,
	}
}

// Subscribe registers a listener for tick results. Results are delivered
// best-effort: a subscriber that falls behind its buffer misses results
// rather than stalling combat resolution.
func (s *Scheduler) Subscribe() <-chan TickResult {
	ch := make(chan TickResult, defaultResultBuffer)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// Start launches the scheduling loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled.
//
// Precondition: Start must be called at most once per Scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
	s.logger.Info("combat scheduler started",
		zap.Duration("interval", s.interval),
		zap.Int("workers", s.workers),
	)
}

// Stop halts the loop and waits for the in-flight pass to drain, then
// closes all subscriber channels.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done

	s.mu.Lock()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.mu.Unlock()
	s.logger.Info("combat scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.pass(ctx, now.UTC())
		}
	}
}

// pass resolves every due encounter once and blocks until all workers
// finish. A failed tick is logged and isolated; it never aborts the pass.
func (s *Scheduler) pass(ctx context.Context, now time.Time) {
	due, err := s.engine.DueEncounters(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("querying due encounters", zap.Error(err))
		}
		return
	}
	if len(due) == 0 {
		return
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, id := range due {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}
		wg.Add(1)
		id := id
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := s.engine.Tick(ctx, id)
			if err != nil {
				// Stale encounters are routine: the fight ended between the
				// due query and the tick.
				if !errors.Is(err, ErrStaleEncounter) && ctx.Err() == nil {
					s.logger.Error("combat tick failed",
						zap.String("encounter_id", id.String()),
						zap.Error(err),
					)
				}
				return
			}
			s.publish(res)
		}()
	}
	wg.Wait()
}

// publish fans a result out to all subscribers without blocking.
func (s *Scheduler) publish(res TickResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- res:
		default:
			s.logger.Warn("tick result dropped, subscriber backlogged",
				zap.String("encounter_id", res.EncounterID.String()),
			)
		}
	}
}
