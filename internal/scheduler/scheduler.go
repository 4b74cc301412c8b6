// Package scheduler runs periodic syncs in-process on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single job run.
const DefaultTimeout = 5 * time.Minute

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Entry describes a registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	ids    map[string]cron.EntryID
	specs  map[string]string
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: DefaultTimeout,
		ids:     make(map[string]cron.EntryID),
		specs:   make(map[string]string),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under name using a standard five-field cron spec or a
// descriptor such as "@hourly". An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	s.mu.Lock()
	s.ids[name] = id
	s.specs[name] = spec
	s.mu.Unlock()

	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running jobs and waits for them to
// return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// Entries lists registered jobs sorted by name. Next is zero until Start.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.ids))
	for name, id := range s.ids {
		entries = append(entries, Entry{
			Name: name,
			Spec: s.specs[name],
			Next: s.cron.Entry(id).Next,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Info("job finished", "job", name, "duration", time.Since(start))
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
