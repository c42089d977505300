package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// TickRequester accepts a request to check for due reminders.
type TickRequester interface {
	RequestTick()
}

// Scheduler adds a periodic safety tick on top of the actor's own wakeup timer.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    TickRequester
	logger    *slog.Logger
	interval  time.Duration
}

func NewScheduler(target TickRequester, interval time.Duration, logger *slog.Logger) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	return &Scheduler{
		scheduler: scheduler,
		target:    target,
		logger:    logger,
		interval:  interval,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Запуск планировщика",
		"interval", s.interval.String(),
	)

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		s.logger.Debug("Плановая проверка напоминаний")
		s.target.RequestTick()
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика")
	s.scheduler.Stop()
}
