package scheduler

import (
	"context"

	"github.com/postboxhq/postbox/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartCron),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Schedule: cfg.CronSchedule,
	}.withDefaults()
}

// StartCron registers the daily storage-fee entry and ties the cron
// runner to the fx lifecycle.
func StartCron(lc fx.Lifecycle, sched *Scheduler, log *zap.Logger) error {
	if sched.cfg.Disabled {
		log.Info("scheduler disabled")
		return nil
	}

	runner := cron.New()
	_, err := runner.AddFunc(sched.cfg.Schedule, func() {
		if err := sched.RunOnce(context.Background()); err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runner.Start()
			log.Info("scheduler started", zap.String("schedule", sched.cfg.Schedule))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := runner.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})

	return nil
}
