package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"keepersecurity.com/ksm-catalog-sync/internal/logging"
)

const (
	RefreshTaskId        = "authentik_entities_refresh"
	DefaultRefreshPeriod = 30 * time.Minute
	DefaultRefreshLimit  = 2 * time.Minute
)

// TaskSpec describes a recurring task. Fn receives a context that is canceled
// after Timeout or when the scheduler stops.
type TaskSpec struct {
	Id        string
	Frequency time.Duration
	Timeout   time.Duration
	Fn        func(ctx context.Context)
}

// RefreshTask is the recurring sync of p.
func RefreshTask(p IEntityProvider, frequency, timeout time.Duration) TaskSpec {
	return TaskSpec{
		Id:        RefreshTaskId,
		Frequency: frequency,
		Timeout:   timeout,
		Fn: func(ctx context.Context) {
			_ = p.RunSync(ctx)
		},
	}
}

// Scheduler runs tasks on fixed intervals. A task never overlaps with itself:
// a tick that arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler() *Scheduler {
	var logger = logging.CronLogger{}
	var ctx, cancel = context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) ScheduleTask(spec TaskSpec) (err error) {
	if len(spec.Id) == 0 {
		err = errors.New("task id is required")
		return
	}
	if spec.Frequency < time.Second {
		err = fmt.Errorf("task \"%s\": frequency must be at least 1s, got %s", spec.Id, spec.Frequency)
		return
	}
	if spec.Fn == nil {
		err = fmt.Errorf("task \"%s\": function is required", spec.Id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[spec.Id]; ok {
		err = fmt.Errorf("task \"%s\" is already scheduled", spec.Id)
		return
	}

	var id cron.EntryID
	if id, err = s.cron.AddFunc("@every "+spec.Frequency.String(), func() {
		s.run(spec)
	}); err != nil {
		return
	}
	s.entries[spec.Id] = id
	logging.Info().Str("task", spec.Id).Dur("frequency", spec.Frequency).Dur("timeout", spec.Timeout).
		Msg("task scheduled")
	return
}

func (s *Scheduler) run(spec TaskSpec) {
	var ctx = s.ctx
	var cancel context.CancelFunc = func() {}
	if spec.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}
	defer cancel()

	var started = time.Now()
	spec.Fn(ctx)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logging.Warn().Str("task", spec.Id).Dur("timeout", spec.Timeout).Dur("elapsed", time.Since(started)).
			Msg("task exceeded its timeout")
	}
}

// Next returns the next activation time of a task.
func (s *Scheduler) Next(id string) (next time.Time, ok bool) {
	s.mu.Lock()
	var entryId, found = s.entries[id]
	s.mu.Unlock()
	if !found {
		return
	}
	var entry = s.cron.Entry(entryId)
	next, ok = entry.Next, entry.Valid()
	return
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running tasks and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	var done = s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	var stopCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Stop(stopCtx)
	return ctx.Err()
}

func (s *Scheduler) String() string {
	return "scheduler"
}
