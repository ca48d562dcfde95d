// Package refresh re-reads the tool registry on a schedule and swaps the
// rebuilt tool snapshot into the shared tool set.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/cicidi/product-sales-prediction/internal/tools"
)

// Reloader rebuilds the tool snapshot into set.
type Reloader interface {
	Reload(ctx context.Context, set *tools.Set) error
}

// Result describes the most recent refresh attempt.
type Result struct {
	At    time.Time
	Tools int
	Err   error
}

// Service runs Reloader on a cron schedule.
type Service struct {
	spec     string
	reloader Reloader
	set      *tools.Set
	logger   *slog.Logger
	timeout  time.Duration

	mu   sync.Mutex
	last Result
	runs int
}

// NewService creates a Service. An empty spec disables scheduling; RunOnce
// still works.
func NewService(spec string, reloader Reloader, set *tools.Set, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		spec:     spec,
		reloader: reloader,
		set:      set,
		logger:   logger,
		timeout:  time.Minute,
	}
}

// Validate reports whether the schedule parses.
func (s *Service) Validate() error {
	if s.spec == "" {
		return nil
	}
	if _, err := robfigcron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("refresh: invalid schedule %q: %w", s.spec, err)
	}
	return nil
}

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.spec == "" {
		s.logger.Info("refresh: disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	c := robfigcron.New()
	if _, err := c.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("refresh: invalid schedule %q: %w", s.spec, err)
	}

	c.Start()
	s.logger.Info("refresh: started", "schedule", s.spec)

	<-ctx.Done()

	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce reloads the registry now. Failures keep the previous snapshot.
func (s *Service) RunOnce(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.reloader.Reload(ctx, s.set)
	res := Result{At: time.Now(), Tools: s.set.Current().Len(), Err: err}
	if err != nil {
		s.logger.Warn("refresh: registry reload failed, keeping current tools", "err", err, "tools", res.Tools)
	} else {
		s.logger.Info("refresh: tools reloaded", "tools", res.Tools)
	}

	s.mu.Lock()
	s.last = res
	s.runs++
	s.mu.Unlock()
	return res
}

// Last returns the most recent result and the number of runs so far.
func (s *Service) Last() (Result, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.runs
}
