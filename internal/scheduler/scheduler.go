package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"PriceForecast/internal/logger"
)

// Job is one forecasting run.
type Job func(ctx context.Context) error

// Scheduler re-runs the forecasting job on a cron spec. A run that is still
// in progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context

	log  *logger.Logger
	wg   sync.WaitGroup
	runs int
	mu   sync.Mutex
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, job Job, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
		),
		Job: job,
		Ctx: ctx,
		log: log,
	}
}

// Register adds the forecasting job on the given spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	s.log.Info("forecast task registered", logger.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// Runs returns how many runs have started.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// RunNow executes the job immediately on the calling goroutine (cron tick).
func (s *Scheduler) RunNow() {
	s.wg.Add(1)
	defer s.wg.Done()
	s.run()
}

// Trigger starts the job in the background (RUN_ON_START). The run is
// counted before Trigger returns, so a later Stop waits for it.
func (s *Scheduler) Trigger() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	s.runs++
	n := s.runs
	s.mu.Unlock()

	if err := s.Ctx.Err(); err != nil {
		s.log.Warn("skipping forecast run", logger.Int("run", n), logger.Error(err))
		return
	}
	s.log.Info("running forecast task", logger.Int("run", n))
	if err := s.Job(s.Ctx); err != nil {
		s.log.Error("forecast task failed", logger.Int("run", n), logger.Error(err))
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, kv(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, append(kv(keysAndValues), logger.Error(err))...)
}

func kv(keysAndValues []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, logger.String(key, fmt.Sprint(keysAndValues[i+1])))
	}
	return fields
}
