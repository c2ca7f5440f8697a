package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// DefaultPollInterval is how often the poller refreshes the mirror.
const DefaultPollInterval = 3 * time.Second

const minCycleTimeout = 5 * time.Second

// Poller refreshes a Mirror on a fixed interval. A cycle that outlasts the
// interval delays the next one instead of overlapping it.
type Poller struct {
	mirror   *Mirror
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

func NewPoller(m *Mirror, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		mirror:   m,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the refresh job, running the first cycle immediately.
// Cycles stop when ctx ends or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler != nil {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)

	_, err = s.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.cycle(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("refresh"),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("schedule refresh: %w", err)
	}

	s.Start()
	p.scheduler = s
	p.cancel = cancel
	p.logger.Info("polling started", "interval", p.interval)
	return nil
}

func (p *Poller) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, max(4*p.interval, minCycleTimeout))
	defer cancel()

	start := time.Now()
	if err := p.mirror.Refresh(cctx); err != nil {
		p.logger.Warn("refresh", "error", err)
		return
	}
	p.logger.Debug("refreshed", "duration", time.Since(start))
}

// Stop cancels an in-flight cycle and waits for the scheduler to shut down.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler == nil {
		return nil
	}
	p.cancel()
	err := p.scheduler.Shutdown()
	p.scheduler = nil
	p.cancel = nil
	if err != nil {
		return fmt.Errorf("stop poller: %w", err)
	}
	p.logger.Info("polling stopped")
	return nil
}
