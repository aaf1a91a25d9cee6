package leaseauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	internalaudit "github.com/MrEthical07/leaseauth/internal/audit"
	"github.com/MrEthical07/leaseauth/internal/flows"
	"github.com/MrEthical07/leaseauth/remote"
)

type leaseCreator interface {
	CreateLease(ctx context.Context) (remote.Descriptor, error)
}

type leaseChecker interface {
	CheckLease(ctx context.Context, code, nonce string) (remote.Outcome, error)
}

// Engine runs remote lease processes. Build it with [New] and [Builder.Build].
type Engine struct {
	config    Config
	leases    leaseCreator
	status    leaseChecker
	store     SessionStore
	scheduler *processScheduler
	metrics   *Metrics
	audit     *internalaudit.Dispatcher
	logger    pslog.Base
	closed    atomic.Bool
}

// StartLeaseProcess cancels every registered process, leases a new remote
// session and starts polling it.
//
// Only lease creation blocks, bounded by ctx and the configured request
// timeout. OnLeaseIntent runs before StartLeaseProcess returns. On any
// failure OnComplete is invoked with a Failed result before returning, the
// zero Handle is returned and nothing is registered.
func (e *Engine) StartLeaseProcess(ctx context.Context, opts LeaseOptions) (Handle, error) {
	if e == nil || e.closed.Load() {
		return Handle{}, failStart(opts, ErrEngineNotReady)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	interval, timeout, err := e.resolveOptions(opts)
	if err != nil {
		return Handle{}, failStart(opts, err)
	}

	e.supersede(ctx, e.scheduler.cancelAll())

	createCtx, cancel := context.WithTimeout(ctx, e.config.API.RequestTimeout)
	desc, err := e.leases.CreateLease(createCtx)
	cancel()
	if err != nil {
		e.metricInc(MetricLeaseCreateFailed)
		e.logger.Warn("lease creation failed", "error", err)
		e.emitAudit(ctx, auditEventLeaseCreateFailed, false, Handle{}, "", LeaseStatusFailed, "", err)
		return Handle{}, failStart(opts, fmt.Errorf("%w: %w", ErrLeaseCreateFailed, err))
	}

	h, err := newHandle()
	if err != nil {
		return Handle{}, failStart(opts, fmt.Errorf("%w: %v", ErrHandleMint, err))
	}
	p := newLeaseProcess(h, desc, time.Now(), interval, timeout, e.config.Polling.RetryLimit, opts)
	superseded, ok := e.scheduler.register(p)
	if !ok {
		return Handle{}, failStart(opts, ErrEngineNotReady)
	}
	// Starts that overlapped this one's lease creation.
	e.supersede(ctx, superseded)

	e.metricInc(MetricLeaseCreated)
	e.logger.Info("lease created",
		"handle", h.String(),
		"lease_code", desc.Code,
		"nonce", remote.Redact(desc.Nonce),
		"poll_interval", interval.String(),
		"timeout", timeout.String(),
	)
	e.emitAudit(ctx, auditEventLeaseCreated, true, h, desc.Code, desc.Status, "", nil)

	if opts.OnLeaseIntent != nil {
		opts.OnLeaseIntent(desc)
	}
	go e.runLeaseProcess(p)
	return h, nil
}

func (e *Engine) supersede(ctx context.Context, processes []*leaseProcess) {
	for _, p := range processes {
		e.metricInc(MetricProcessSuperseded)
		e.logger.Info("lease process superseded", "handle", p.handle.String(), "lease_code", p.code)
		e.emitAudit(ctx, auditEventLeaseSuperseded, true, p.handle, p.code, LeaseStatusCancelled, "", nil)
	}
}

func failStart(opts LeaseOptions, err error) error {
	if opts.OnComplete != nil {
		opts.OnComplete(LeaseResult{Status: LeaseStatusFailed, Err: err})
	}
	return err
}

func (e *Engine) resolveOptions(opts LeaseOptions) (time.Duration, time.Duration, error) {
	if opts.PollInterval < 0 || opts.Timeout < 0 {
		return 0, 0, ErrInvalidOptions
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = e.config.Polling.DefaultInterval
	}
	if interval < e.config.Polling.MinInterval {
		interval = e.config.Polling.MinInterval
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = e.config.Polling.DefaultTimeout
	}
	return interval, timeout, nil
}

// Cancel asks the process behind h to stop before its next status check.
// It reports whether h named a registered process; cancelling a finished or
// unknown handle does nothing.
func (e *Engine) Cancel(h Handle) bool {
	if e == nil || h.IsZero() {
		return false
	}
	p, ok := e.scheduler.lookup(h)
	if !ok {
		return false
	}
	if p.requestCancel() {
		e.logger.Debug("lease process cancel requested", "handle", h.String())
	}
	return true
}

// CancelAll flags every registered process and returns how many were newly flagged.
func (e *Engine) CancelAll() int {
	if e == nil {
		return 0
	}
	return len(e.scheduler.cancelAll())
}

// ActiveProcesses lists the handles of registered processes.
func (e *Engine) ActiveProcesses() []Handle {
	if e == nil {
		return nil
	}
	return e.scheduler.handles()
}

// ProcessStatus returns the last observed status of a registered process.
func (e *Engine) ProcessStatus(h Handle) (LeaseStatus, bool) {
	if e == nil {
		return remote.StatusUnknown, false
	}
	p, ok := e.scheduler.lookup(h)
	if !ok {
		return remote.StatusUnknown, false
	}
	status, _, _ := p.snapshot()
	return status, true
}

// LatestSession returns the most recently stored credentials when the
// session store supports lookups.
func (e *Engine) LatestSession(ctx context.Context) (Credentials, error) {
	if e == nil || e.store == nil {
		return Credentials{}, ErrEngineNotReady
	}
	latest, ok := e.store.(interface {
		Latest(context.Context) (Credentials, error)
	})
	if !ok {
		return Credentials{}, errors.New("session store does not support lookups")
	}
	return latest.Latest(ctx)
}

// Close cancels every process, waits for each poll loop to settle its result
// and stops the audit dispatcher. In-flight status checks are allowed to
// finish. OnComplete callbacks may still be running when Close returns, and
// an OnComplete callback may itself call Close.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.scheduler.close()
	e.audit.Close()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Stats().Dropped
}

func (e *Engine) AuditDelivered() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Stats().Delivered
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

/*
====================================
POLL LOOP
====================================
*/

func (e *Engine) runLeaseProcess(p *leaseProcess) {
	var release sync.Once
	loopDone := func() { release.Do(e.scheduler.loopDone) }
	defer loopDone()

	deps := flows.LeaseTickDeps{
		Now:             time.Now,
		CancelRequested: p.cancelRequested,
		CheckLease:      e.status.CheckLease,
		SaveSession:     e.store.Save,
		RetryLimit:      p.retryLimit,
		BudgetExhausted: ErrRetryBudgetExhausted,
		PersistFailed:   ErrSessionPersist,
		CheckTimeout:    e.config.API.RequestTimeout,
		PersistTimeout:  e.config.Session.PersistTimeout,
	}

	for {
		_, _, retries := p.snapshot()
		state := flows.LeaseTickState{
			Code:     p.code,
			Nonce:    p.nonce,
			Deadline: p.deadline,
			Retries:  retries,
		}

		res := flows.RunLeaseTick(context.Background(), state, deps)

		if res.Checked {
			e.metricInc(MetricStatusCheck)
			if e.metrics != nil {
				e.metrics.Observe(MetricStatusCheckLatency, res.CheckLatency)
			}
		}
		if res.Discarded {
			e.metricInc(MetricStatusDiscarded)
		}

		switch res.Kind {
		case flows.LeaseTickTerminal:
			e.finishLeaseProcess(p, res, loopDone)
			return
		case flows.LeaseTickRetry:
			p.setRetries(res.Retries)
			e.metricInc(MetricStatusTransientRetry)
			e.logger.Warn("lease status check failed, retrying",
				"handle", p.handle.String(),
				"retry", res.Retries,
				"retry_limit", p.retryLimit,
				"error", res.Err,
			)
		case flows.LeaseTickProgress:
			now := time.Now()
			p.observe(res.Status, now)
			e.logger.Debug("lease status", "handle", p.handle.String(), "status", res.Status.String())
			if p.onProgress != nil && !p.completed.Load() {
				e.metricInc(MetricProgress)
				p.onProgress(ProgressUpdate{Handle: p.handle, Status: res.Status, LastUpdated: now})
			}
		}

		p.wait(time.Now())
	}
}

// finishLeaseProcess deregisters p and delivers its single completion.
// release is called once the result is settled and before OnComplete runs.
func (e *Engine) finishLeaseProcess(p *leaseProcess, res flows.LeaseTickResult, release func()) {
	if !p.completed.CompareAndSwap(false, true) {
		return
	}
	p.observe(res.Status, time.Now())
	e.scheduler.remove(p.handle)

	result := LeaseResult{
		Handle:  p.handle,
		Status:  res.Status,
		Retries: res.Retries,
	}
	var eventType string
	switch res.Status {
	case LeaseStatusAuthorized:
		result.Credentials = res.Credentials
		eventType = auditEventLeaseAuthorized
		e.metricInc(MetricProcessAuthorized)
	case LeaseStatusCancelled:
		result.Err = ErrCancelled
		eventType = auditEventLeaseCancelled
		e.metricInc(MetricProcessCancelled)
	case LeaseStatusTimedOut:
		result.Err = ErrTimeout
		eventType = auditEventLeaseTimedOut
		e.metricInc(MetricProcessTimedOut)
	default:
		result.Status = LeaseStatusFailed
		result.Err = res.Err
		eventType = auditEventLeaseFailed
		e.metricInc(MetricProcessFailed)
		if errors.Is(res.Err, ErrSessionPersist) {
			e.metricInc(MetricSessionPersistFailed)
			e.logger.Error("session persist failed", "handle", p.handle.String(), "error", res.Err)
		}
	}

	playerIdentifier := ""
	if result.Credentials != nil {
		playerIdentifier = result.Credentials.PlayerIdentifier
	}
	e.logger.Info("lease process finished",
		"handle", p.handle.String(),
		"lease_code", p.code,
		"status", result.Status.String(),
		"retries", result.Retries,
		"elapsed", time.Since(p.startedAt).String(),
		"error", result.Err,
	)
	e.emitAudit(context.Background(), eventType, result.Status == LeaseStatusAuthorized,
		p.handle, p.code, result.Status, playerIdentifier, result.Err)

	release()
	if p.onComplete != nil {
		p.onComplete(result)
	}
}
