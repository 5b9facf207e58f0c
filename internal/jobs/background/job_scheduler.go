package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"sitecms/internal/logging"
)

// NotifyRetryJob re-sends failed lead notifications.
const NotifyRetryJob = "lead-notify-retry"

// ErrJobNotScheduled is returned by RunNow for a job that was never registered,
// e.g. the retry job when its interval is zero.
var ErrJobNotScheduled = errors.New("job not scheduled")

// NotificationRetrier re-sends lead notifications that failed earlier.
type NotificationRetrier interface {
	RetryFailed(ctx context.Context) (int, error)
}

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	retrier   NotificationRetrier
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(retrier NotificationRetrier, retryInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		scheduler: scheduler,
		retrier:   retrier,
		interval:  retryInterval,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	logging.Info().Strs("jobs", js.JobNames()).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running jobs and waits for them to return.
func (js *JobScheduler) Stop() error {
	logging.Info().Msg("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotScheduled, name)
	}
	return job.RunNow()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs() error {
	if js.retrier == nil || js.interval <= 0 {
		return nil
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.retryNotifications),
		gocron.WithName(NotifyRetryJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", NotifyRetryJob, err)
	}

	js.mu.Lock()
	js.jobs[NotifyRetryJob] = job
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) retryNotifications() {
	start := time.Now()
	delivered, err := js.retrier.RetryFailed(js.ctx)
	if err != nil {
		logging.Error().Err(err).Msg("lead notification retry failed")
		return
	}
	if delivered > 0 {
		logging.Info().
			Int("delivered", delivered).
			Dur("took", time.Since(start)).
			Msg("re-sent failed lead notifications")
	}
}
