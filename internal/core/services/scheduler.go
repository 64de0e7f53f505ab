package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs timed and manual cycles, at most one at a time.
//
// Triggers that arrive while a cycle is Fetching, Diffing or Merging are
// coalesced. After a cycle the timer is rearmed from the Config as it is
// stored at that moment, so interval changes and the auto-sync toggle take
// effect on the next arm without touching the cycle in flight.
type Scheduler struct {
	config  domain.SchedulerConfig
	runner  driving.CycleRunner
	store   driving.ConfigService
	metrics driven.SyncMetrics
	history driven.CycleHistoryStore

	mu          sync.Mutex
	running     bool
	state       domain.SyncState
	timer       *time.Timer
	nextRun     time.Time
	backoff     *backoff.ExponentialBackOff
	failures    int
	reauth      bool
	reauthToken string
	dirty       bool
	last        *domain.CycleResult
	baseCtx     context.Context
	cancel      context.CancelFunc
	stopCh      chan struct{}
	wg          sync.WaitGroup
	now         func() time.Time
}

// NewScheduler creates a scheduler with configuration.
// metrics may be nil.
func NewScheduler(
	config domain.SchedulerConfig,
	runner driving.CycleRunner,
	store driving.ConfigService,
	metrics driven.SyncMetrics,
) *Scheduler {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.BackoffInitial
	b.MaxInterval = config.BackoffMax
	b.Multiplier = config.BackoffMultiplier
	b.RandomizationFactor = config.BackoffJitter
	b.Reset()

	return &Scheduler{
		config:  config,
		runner:  runner,
		store:   store,
		metrics: metrics,
		state:   domain.StateIdle,
		backoff: b,
		now:     time.Now,
	}
}

// historyKeep is how many cycles the history store retains.
const historyKeep = 100

// SetHistory makes the scheduler log every completed cycle to h.
// Call before Start.
func (s *Scheduler) SetHistory(h driven.CycleHistoryStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// Start arms the timer from the stored Config. This method blocks until
// ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.Reconfigure(ctx); err != nil {
		logger.Warn("scheduler: failed to read config: %v", err)
		s.mu.Lock()
		if s.running && s.state == domain.StateIdle {
			s.configUnavailableLocked(false)
		}
		s.mu.Unlock()
	}

	select {
	case <-ctx.Done():
		_ = s.Stop()
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop disarms the timer, abandons a pending backoff and waits for an
// in-flight cycle to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.stopTimerLocked()
	if s.state == domain.StateErrored {
		s.setStateLocked(domain.StateIdle)
	}
	s.dirty = false
	close(s.stopCh)
	cancel := s.cancel
	s.mu.Unlock()

	s.wg.Wait()
	cancel()

	return nil
}

// Trigger starts a cycle in the background. It returns false when the
// scheduler is not running or a cycle is already in flight.
func (s *Scheduler) Trigger(trigger domain.Trigger) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	if s.state.InFlight() {
		s.mu.Unlock()
		s.coalesced(trigger)
		return false
	}
	s.beginLocked()
	s.wg.Add(1)
	ctx := s.baseCtx
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx, trigger)
	}()
	return true
}

// SyncNow runs a manual cycle and waits for its result.
func (s *Scheduler) SyncNow(ctx context.Context) (*domain.CycleResult, error) {
	s.mu.Lock()
	if s.state.InFlight() {
		s.mu.Unlock()
		s.coalesced(domain.TriggerManual)
		return nil, domain.ErrSyncInProgress
	}
	s.beginLocked()
	// Stop only waits for cycles that began while the scheduler was running.
	tracked := s.running
	if tracked {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if tracked {
		defer s.wg.Done()
	}
	return s.execute(ctx, domain.TriggerManual), nil
}

// Reconfigure re-reads the Config. When idle, the timer is rearmed or
// disarmed; otherwise the change is flagged and the end of the current
// cycle or backoff reads the Config again.
func (s *Scheduler) Reconfigure(ctx context.Context) error {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateIdle {
		s.dirty = true
		return nil
	}
	s.armLocked(cfg, cfg.NextAutoSync(s.now()))
	return nil
}

// Status returns a point-in-time view of the scheduler.
func (s *Scheduler) Status() domain.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SchedulerStatus{
		State:               s.state,
		Running:             s.running,
		NextRun:             s.nextRun,
		ConsecutiveFailures: s.failures,
		ReauthRequired:      s.reauth,
		LastResult:          s.last,
	}
}

// beginLocked moves Idle or Errored into Fetching (caller must hold lock).
func (s *Scheduler) beginLocked() {
	s.stopTimerLocked()
	s.nextRun = time.Time{}
	s.setStateLocked(domain.StateFetching)
}

// execute runs the cycle and settles the state machine.
func (s *Scheduler) execute(ctx context.Context, trigger domain.Trigger) *domain.CycleResult {
	s.metrics.CycleStarted(trigger)
	started := s.now()

	res := domain.Await(func() (*domain.CycleResult, error) {
		r := s.runner.RunCycle(ctx, trigger, s.observe)
		if r == nil {
			return nil, errors.New("cycle returned no result")
		}
		return r, nil
	})

	result := res.Value
	if res.Err != nil {
		result = &domain.CycleResult{
			ID:        uuid.NewString(),
			Trigger:   trigger,
			StartedAt: started,
			EndedAt:   s.now(),
			Err:       res.Err,
		}
	}

	s.finish(result)
	s.record(result)
	return result
}

// record appends the cycle to history. Failures are logged and ignored.
func (s *Scheduler) record(result *domain.CycleResult) {
	s.mu.Lock()
	history := s.history
	s.mu.Unlock()
	if history == nil {
		return
	}

	ctx := context.Background()
	if err := history.Record(ctx, domain.NewCycleRecord(result)); err != nil {
		logger.Warn("scheduler: failed to record cycle %s: %v", result.ID, err)
		return
	}
	if err := history.Prune(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

// observe records stage transitions reported by the runner.
func (s *Scheduler) observe(state domain.SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(state)
}

// finish moves the state machine out of a completed cycle.
func (s *Scheduler) finish(result *domain.CycleResult) {
	s.metrics.CycleFinished(result)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Rearming reads the Config as stored now, not as loaded at cycle start.
	cfg, err := s.loadSettledLocked()

	s.last = result

	if result.Err == nil {
		s.failures = 0
		s.backoff.Reset()
		s.reauth = false
		s.setStateLocked(domain.StateIdle)
		if err != nil {
			logger.Warn("scheduler: failed to read config after cycle: %v", err)
			if s.running {
				s.configUnavailableLocked(false)
			}
			return
		}
		s.armLocked(cfg, s.nextFromNow(cfg))
		return
	}

	s.failures++
	s.setStateLocked(domain.StateErrored)

	if result.ReauthRequired {
		s.reauth = true
		if cfg != nil {
			s.reauthToken = cfg.FanslyToken
		}
	}

	delay := s.backoff.NextBackOff()
	if ra := domain.RetryAfter(result.Err); ra > delay {
		delay = ra
	}
	s.backoffLocked(delay, domain.IsRetryable(result.Err))
}

// loadSettledLocked reads the Config, reading again while a Reconfigure
// flagged an edit during the read (caller must hold lock; it is released
// around each read).
func (s *Scheduler) loadSettledLocked() (*domain.Config, error) {
	for {
		s.dirty = false
		s.mu.Unlock()
		cfg, err := s.store.Load(context.Background())
		s.mu.Lock()
		if err != nil || !s.dirty {
			s.dirty = false
			return cfg, err
		}
	}
}

// configUnavailableLocked treats a failed Config read outside a cycle like
// a failed cycle: Errored, then a backoff after which the Config is read
// again (caller must hold lock). retry asks for a cycle once it is readable.
func (s *Scheduler) configUnavailableLocked(retry bool) {
	s.failures++
	s.setStateLocked(domain.StateErrored)
	s.backoffLocked(s.backoff.NextBackOff(), retry)
}

// backoffLocked arms the backoff timer (caller must hold lock).
func (s *Scheduler) backoffLocked(delay time.Duration, retry bool) {
	logger.Info("scheduler: backing off for %s after failure %d", delay.Round(time.Millisecond), s.failures)
	s.metrics.BackoffScheduled(delay)

	s.stopTimerLocked()
	s.timer = time.AfterFunc(delay, func() { s.afterBackoff(retry) })
	if retry {
		s.nextRun = s.now().Add(delay)
	}
}

// afterBackoff returns Errored to Idle and decides what runs next.
func (s *Scheduler) afterBackoff(retry bool) {
	s.mu.Lock()
	if s.state != domain.StateErrored {
		// A manual cycle or Stop took over.
		s.mu.Unlock()
		return
	}

	cfg, err := s.loadSettledLocked()
	if s.state != domain.StateErrored {
		s.mu.Unlock()
		return
	}
	if err != nil {
		logger.Warn("scheduler: failed to read config after backoff: %v", err)
		if s.running {
			s.configUnavailableLocked(retry)
		} else {
			s.stopTimerLocked()
			s.setStateLocked(domain.StateIdle)
		}
		s.mu.Unlock()
		return
	}

	s.setStateLocked(domain.StateIdle)

	if retry && s.running && cfg.AutoSyncEnabled {
		s.mu.Unlock()
		s.Trigger(domain.TriggerRetry)
		return
	}

	s.armLocked(cfg, s.nextFromNow(cfg))
	s.mu.Unlock()
}

// onTimer fires a timer cycle unless auto sync was switched off meanwhile.
func (s *Scheduler) onTimer() {
	cfg, err := s.store.Load(context.Background())

	s.mu.Lock()
	if s.state != domain.StateIdle {
		s.mu.Unlock()
		return
	}
	if err != nil {
		logger.Warn("scheduler: failed to read config on timer: %v", err)
		if s.running {
			s.configUnavailableLocked(true)
		} else {
			s.stopTimerLocked()
		}
		s.mu.Unlock()
		return
	}
	if !cfg.AutoSyncEnabled {
		logger.Debug("scheduler: auto sync disabled, timer ignored")
		s.stopTimerLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.Trigger(domain.TriggerTimer)
}

// armLocked schedules the next automatic cycle at next, or disarms the
// timer when automatic sync is off (caller must hold lock).
func (s *Scheduler) armLocked(cfg *domain.Config, next time.Time) {
	s.stopTimerLocked()

	if !s.running || cfg == nil || !cfg.AutoSyncEnabled || cfg.SyncInterval <= 0 {
		return
	}
	if s.reauth {
		if cfg.FanslyToken == s.reauthToken {
			logger.Warn("scheduler: automatic sync paused until the token is replaced")
			return
		}
		s.reauth = false
	}

	delay := next.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.nextRun = s.now().Add(delay)
	s.timer = time.AfterFunc(delay, s.onTimer)

	logger.Debug("scheduler: next automatic sync in %s", delay.Round(time.Millisecond))
}

func (s *Scheduler) nextFromNow(cfg *domain.Config) time.Time {
	if cfg == nil {
		return time.Time{}
	}
	return s.now().Add(cfg.Interval())
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.nextRun = time.Time{}
}

func (s *Scheduler) setStateLocked(state domain.SyncState) {
	if s.state == state {
		return
	}
	s.state = state
	s.metrics.StateChanged(state)
}

func (s *Scheduler) coalesced(trigger domain.Trigger) {
	logger.Debug("scheduler: %s trigger coalesced, cycle already in flight", trigger)
	s.metrics.TriggerCoalesced(trigger)
}

// nopMetrics discards everything.
type nopMetrics struct{}

func (nopMetrics) CycleStarted(domain.Trigger)       {}
func (nopMetrics) CycleFinished(*domain.CycleResult) {}
func (nopMetrics) TriggerCoalesced(domain.Trigger)   {}
func (nopMetrics) StateChanged(domain.SyncState)     {}
func (nopMetrics) BackoffScheduled(time.Duration)    {}
