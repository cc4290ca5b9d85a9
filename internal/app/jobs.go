package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const jobTimeout = time.Minute

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	interval := a.appConfig.Commerce.OutboxInterval
	if interval == "" {
		interval = "@every 10s"
	}
	_, err = a.sched.AddFunc(interval, a.SchedOutboxRelayTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedOutboxCleanupTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedOutboxRelayTask delivers pending outbox events
func (a *Application) SchedOutboxRelayTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := a.RunOutboxRelay(ctx); err != nil {
		zap.L().Error("outbox relay failed", zap.Error(err))
	}
}

// SchedOutboxCleanupTask removes outbox events delivered before the retention window
func (a *Application) SchedOutboxCleanupTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	days := a.appConfig.Commerce.OutboxRetentionDays
	if days <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := a.relay.Cleanup(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		zap.L().Error("outbox cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("outbox cleanup", zap.Int64("deleted", n))
	}
}
