package leaseauth

import (
	"sync"
	"sync/atomic"
	"time"
)

// leaseProcess is the state of one handshake. Fields above mu are fixed at
// construction.
type leaseProcess struct {
	handle       Handle
	code         string
	nonce        string
	startedAt    time.Time
	deadline     time.Time
	pollInterval time.Duration
	retryLimit   int
	onProgress   func(ProgressUpdate)
	onComplete   func(LeaseResult)

	mu          sync.Mutex
	status      LeaseStatus
	lastUpdated time.Time
	retries     int

	cancelled  atomic.Bool
	cancelOnce sync.Once
	cancelCh   chan struct{}
	completed  atomic.Bool
}

func newLeaseProcess(h Handle, desc LeaseDescriptor, now time.Time, interval, timeout time.Duration, retryLimit int, opts LeaseOptions) *leaseProcess {
	return &leaseProcess{
		handle:       h,
		code:         desc.Code,
		nonce:        desc.Nonce,
		startedAt:    now,
		deadline:     now.Add(timeout),
		pollInterval: interval,
		retryLimit:   retryLimit,
		onProgress:   opts.OnProgress,
		onComplete:   opts.OnComplete,
		status:       LeaseStatusCreated,
		lastUpdated:  now,
		cancelCh:     make(chan struct{}),
	}
}

// requestCancel sets the cooperative cancel flag. It reports whether this
// call set it.
func (p *leaseProcess) requestCancel() bool {
	set := p.cancelled.CompareAndSwap(false, true)
	p.cancelOnce.Do(func() { close(p.cancelCh) })
	return set
}

func (p *leaseProcess) cancelRequested() bool {
	return p.cancelled.Load()
}

func (p *leaseProcess) observe(status LeaseStatus, at time.Time) {
	p.mu.Lock()
	p.status = status
	p.lastUpdated = at
	p.mu.Unlock()
}

func (p *leaseProcess) setRetries(n int) {
	p.mu.Lock()
	p.retries = n
	p.mu.Unlock()
}

func (p *leaseProcess) snapshot() (LeaseStatus, time.Time, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.lastUpdated, p.retries
}

// wait sleeps until the next tick: one poll interval, cut short by the
// deadline or a cancel request.
func (p *leaseProcess) wait(now time.Time) {
	d := p.pollInterval
	if remaining := p.deadline.Sub(now); remaining < d {
		d = remaining
	}
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-p.cancelCh:
	}
}
