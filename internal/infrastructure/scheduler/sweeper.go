// Package scheduler runs the background maintenance loops of the
// bridge. Its only job today is sweeping orphaned render temp files:
// the render path deletes its own temp files after every job, but a
// crash or a killed process leaves the pair behind, and on a machine
// that prints all day those add up.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/infrastructure/telemetry"
)

const (
	defaultSweepInterval = 10 * time.Minute
	defaultSweepMaxAge   = time.Hour
	defaultSweepPrefix   = "printbridge-"
)

// SweeperConfig holds temp file sweeper configuration.
type SweeperConfig struct {
	// Dir is the directory to sweep. Defaults to the OS temp dir.
	Dir string
	// Prefix selects which files belong to the bridge. Only matching
	// files are ever considered for deletion.
	Prefix string
	// MaxAge is how old a file must be before it is swept. Default: 1h,
	// comfortably past the longest render timeout.
	MaxAge time.Duration
	// Interval between sweeps. Default: 10m.
	Interval time.Duration
	// Metrics receives the temp-file gauge after each sweep. Optional.
	Metrics *telemetry.PrintMetrics
}

// Sweeper periodically deletes stale render temp files.
type Sweeper struct {
	config  SweeperConfig
	logger  *zap.Logger
	metrics *telemetry.PrintMetrics

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a sweeper. Zero config fields fall back to defaults.
func NewSweeper(cfg SweeperConfig, logger *zap.Logger) *Sweeper {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultSweepPrefix
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultSweepMaxAge
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		config:  cfg,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper is
// a no-op.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("temp file sweeper started",
		zap.String("dir", s.config.Dir),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("max_age", s.config.MaxAge),
	)

	return nil
}

// Stop halts the sweep loop and waits for an in-progress sweep to
// finish, bounded by ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("temp file sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(); err != nil {
				s.logger.Warn("temp file sweep failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("swept stale temp files", zap.Int("removed", n))
			}
		}
	}
}

// SweepOnce scans the directory and deletes matching files older than
// MaxAge. Returns how many files were removed. Individual deletion
// failures are logged and skipped so one stuck file cannot stall the
// rest of the sweep. The count of matching files still on disk afterward
// goes to the temp-file gauge.
func (s *Sweeper) SweepOnce() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.config.Dir, s.config.Prefix+"*"))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.config.MaxAge)
	removed := 0
	remaining := 0

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			// Raced with the render path deleting its own file.
			continue
		}
		if info.IsDir() {
			continue
		}
		if info.ModTime().After(cutoff) {
			remaining++
			continue
		}

		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove stale temp file",
				zap.String("path", path),
				zap.Error(err),
			)
			remaining++
			continue
		}

		s.logger.Debug("removed stale temp file",
			zap.String("path", path),
			zap.Time("mod_time", info.ModTime()),
		)
		removed++
	}

	s.metrics.RecordTempFiles(context.Background(), remaining)
	return removed, nil
}
