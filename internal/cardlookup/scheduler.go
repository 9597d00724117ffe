package cardlookup

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner removes stale persisted cards.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// SchedulerConfig holds configuration for the prune scheduler.
type SchedulerConfig struct {
	// Interval is how often to prune. Default: 1 hour
	Interval time.Duration

	// StartImmediately prunes once when the scheduler starts.
	StartImmediately bool

	Logger *zap.Logger
}

// SchedulerStats reports prune runs.
type SchedulerStats struct {
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	Removed   int64     `json:"removed"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// PruneScheduler prunes the persistent card cache periodically.
type PruneScheduler struct {
	pruner Pruner
	config SchedulerConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	stats   SchedulerStats
}

// NewPruneScheduler creates a stopped scheduler.
func NewPruneScheduler(pruner Pruner, config SchedulerConfig) *PruneScheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &PruneScheduler{pruner: pruner, config: config}
}

// Start runs the scheduler until Stop is called or ctx is done.
// Returns an error if the scheduler is already running.
func (s *PruneScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)
	return nil
}

// Stop stops the scheduler and waits for an in-flight prune to finish.
func (s *PruneScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errors.New("scheduler is not running")
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Stats returns a snapshot of the prune statistics.
func (s *PruneScheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *PruneScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.StartImmediately {
		s.prune(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.prune(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *PruneScheduler) prune(ctx context.Context) {
	removed, err := s.pruner.Prune(ctx)

	s.mu.Lock()
	s.stats.Runs++
	s.stats.LastRun = time.Now()
	s.stats.LastError = ""
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
	} else {
		s.stats.Removed += removed
	}
	s.mu.Unlock()

	switch {
	case err != nil && ctx.Err() == nil:
		s.config.Logger.Warn("prune card cache", zap.Error(err))
	case removed > 0:
		s.config.Logger.Info("pruned stale cards", zap.Int64("removed", removed))
	}
}
