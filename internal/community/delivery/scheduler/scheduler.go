// Package scheduler runs the worker's periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-stock-circle/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is one scheduled unit of work. Its context is cancelled after the job timeout.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs share a parent context.
type Scheduler struct {
	cron       *cron.Cron
	parser     cron.Parser
	jobTimeout time.Duration
	logger     *logger.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler that evaluates specs in UTC.
func New(jobTimeout time.Duration, log *logger.Logger) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		parser:     parser,
		jobTimeout: jobTimeout,
		logger:     log,
		ctx:        context.Background(),
	}
}

// Register adds a job. An empty spec disables the job.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	if spec == "" {
		s.logger.Info("Scheduled job disabled", logger.StringField("job", name))
		return nil
	}
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	if _, err := s.cron.AddFunc(spec, s.wrap(name, fn)); err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	s.logger.Info("Registered scheduled job", logger.StringField("job", name), logger.StringField("spec", spec))
	return nil
}

// Start runs the cron loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("Scheduler started", logger.IntField("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) wrap(name string, fn JobFunc) func() {
	return func() {
		s.mu.Lock()
		parent := s.ctx
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
		defer cancel()

		started := time.Now()
		s.logger.Info("Running scheduled job", logger.StringField("job", name))
		if err := fn(ctx); err != nil {
			s.logger.Error("Scheduled job failed", logger.StringField("job", name), logger.ErrorField(err),
				logger.Field("duration", time.Since(started)))
			return
		}
		s.logger.Info("Scheduled job finished", logger.StringField("job", name), logger.Field("duration", time.Since(started)))
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, zap.Error(err))...)
}
