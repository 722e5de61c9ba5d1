// Package scheduler runs the daily storage-fee job on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postboxhq/postbox/internal/clock"
	obsmetrics "github.com/postboxhq/postbox/internal/observability/metrics"
	storagedomain "github.com/postboxhq/postbox/internal/storagecharge/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

const storageFeeJob = "storage_fees"

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	StorageSvc storagedomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	storageSvc storagedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.StorageSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		storageSvc: p.StorageSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	jobMetrics := obsmetrics.Jobs()
	jobMetrics.IncJobRun(name)

	err := fn(ctx)
	jobMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	jobMetrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	log.Error("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes one full scheduler pass. Manual triggers and the cron
// entry share this path.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, storageFeeJob, s.cfg.JobTimeout, s.StorageFeeJob)
}

// StorageFeeJob generates today's storage charges across all active
// tenants. Per-package failures stay inside the report; only a backend
// failure surfaces as an error.
func (s *Scheduler) StorageFeeJob(ctx context.Context) error {
	report, err := s.storageSvc.GenerateDailyStorageCharges(ctx, "")
	if err != nil {
		return err
	}

	log := s.log.With(
		zap.Int("tenants_scanned", report.TenantsScanned),
		zap.Int("charges_created", report.ChargesCreated),
		zap.Int("charges_skipped", report.ChargesSkipped),
	)
	if len(report.Errors) > 0 {
		log.Warn("storage fee job finished with package errors",
			zap.Int("package_errors", len(report.Errors)),
		)
		return nil
	}
	log.Info("storage fee job finished")
	return nil
}
