package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/leaseauth/remote"
	"github.com/MrEthical07/leaseauth/session"
)

// LeaseTickKind tells the poll loop what to do after a tick.
type LeaseTickKind int

const (
	// LeaseTickProgress reports a non-terminal status; poll again after the interval.
	LeaseTickProgress LeaseTickKind = iota
	// LeaseTickRetry absorbs a transient failure; poll again after the interval without a callback.
	LeaseTickRetry
	// LeaseTickTerminal ends the process with Status.
	LeaseTickTerminal
)

// LeaseTickState is the part of a lease process a tick reads.
type LeaseTickState struct {
	Code     string
	Nonce    string
	Deadline time.Time
	Retries  int
}

// LeaseTickDeps captures tick dependencies.
type LeaseTickDeps struct {
	Now             func() time.Time
	CancelRequested func() bool
	CheckLease      func(ctx context.Context, code, nonce string) (remote.Outcome, error)
	SaveSession     func(ctx context.Context, creds session.Credentials) error
	RetryLimit      int
	BudgetExhausted error
	PersistFailed   error
	// CheckTimeout and PersistTimeout bound each step with its own context
	// derived from the tick context. Zero leaves the step on the tick context.
	CheckTimeout   time.Duration
	PersistTimeout time.Duration
}

// LeaseTickResult carries the verdict of one tick.
type LeaseTickResult struct {
	Kind        LeaseTickKind
	Status      remote.Status
	Credentials *session.Credentials
	Err         error
	Retries     int
	// Checked is false when the tick ended before the status call was issued.
	Checked      bool
	CheckLatency time.Duration
	// Discarded is true when a completed status call was ignored because
	// cancellation was observed while it was in flight.
	Discarded bool
}

// RunLeaseTick executes one poll tick. Deadline and cancellation are checked
// before the status call is issued; a cancel observed after the call returns
// discards its result.
func RunLeaseTick(ctx context.Context, state LeaseTickState, deps LeaseTickDeps) LeaseTickResult {
	result := LeaseTickResult{Retries: state.Retries}

	if !deps.Now().Before(state.Deadline) {
		result.Kind = LeaseTickTerminal
		result.Status = remote.StatusTimedOut
		return result
	}
	if deps.CancelRequested() {
		result.Kind = LeaseTickTerminal
		result.Status = remote.StatusCancelled
		return result
	}

	started := deps.Now()
	checkCtx, cancelCheck := stepContext(ctx, deps.CheckTimeout)
	outcome, err := deps.CheckLease(checkCtx, state.Code, state.Nonce)
	cancelCheck()
	result.Checked = true
	result.CheckLatency = deps.Now().Sub(started)

	if deps.CancelRequested() {
		result.Kind = LeaseTickTerminal
		result.Status = remote.StatusCancelled
		result.Discarded = true
		return result
	}

	if err != nil {
		if remote.Classify(err, state.Retries, deps.RetryLimit) == remote.RetryTransient {
			result.Kind = LeaseTickRetry
			result.Retries = state.Retries + 1
			result.Err = err
			return result
		}
		if remote.IsServerFault(err) && deps.BudgetExhausted != nil {
			err = fmt.Errorf("%w: %w", deps.BudgetExhausted, err)
		}
		result.Kind = LeaseTickTerminal
		result.Status = remote.StatusFailed
		result.Err = err
		return result
	}

	if outcome.Status == remote.StatusAuthorized {
		if outcome.Credentials == nil {
			result.Kind = LeaseTickTerminal
			result.Status = remote.StatusFailed
			result.Err = fmt.Errorf("%w: authorized without credentials", remote.ErrMalformedResponse)
			return result
		}
		persistCtx, cancelPersist := stepContext(ctx, deps.PersistTimeout)
		err := deps.SaveSession(persistCtx, *outcome.Credentials)
		cancelPersist()
		if err != nil {
			if deps.PersistFailed != nil {
				err = fmt.Errorf("%w: %w", deps.PersistFailed, err)
			}
			result.Kind = LeaseTickTerminal
			result.Status = remote.StatusFailed
			result.Err = err
			return result
		}
		result.Kind = LeaseTickTerminal
		result.Status = remote.StatusAuthorized
		result.Credentials = outcome.Credentials
		return result
	}

	result.Kind = LeaseTickProgress
	result.Status = outcome.Status
	return result
}

func stepContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
