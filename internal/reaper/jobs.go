package reaper

import (
	"context"
	"time"

	"seatcore/internal/shared/config"
	"seatcore/pkg/logger"
)

// JobProcessor runs the expiry sweep on a fixed interval.
type JobProcessor struct {
	service Service
	cfg     config.ReaperConfig
	done    chan struct{}
}

func NewJobProcessor(service Service, cfg config.ReaperConfig) *JobProcessor {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 100
	}
	return &JobProcessor{
		service: service,
		cfg:     cfg,
		done:    make(chan struct{}),
	}
}

func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	logger.GetDefault().Info("expiry reaper started", "sweep_interval", jp.cfg.SweepInterval.String(), "batch_limit", jp.cfg.BatchLimit)
}

func (jp *JobProcessor) Stop() {
	close(jp.done)
	logger.GetDefault().Info("expiry reaper stopped")
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	if _, err := jp.service.Sweep(ctx, jp.cfg.BatchLimit); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "reaper sweep failed", err, nil)
	}
}
