package leaseauth

import (
	"sync"
	"time"

	"pkt.systems/pslog"
)

// processRegistry maps handles to live lease processes. It exists only while
// at least one process is registered.
type processRegistry struct {
	processes map[Handle]*leaseProcess
	createdAt time.Time
}

// processScheduler owns the registry and every registered process. All
// registry access goes through mu; mu is never held across a network call or
// a caller callback.
type processScheduler struct {
	mu          sync.Mutex
	registry    *processRegistry
	generations uint64
	closed      bool
	loops       sync.WaitGroup
	logger      pslog.Base
}

func newProcessScheduler(logger pslog.Base) *processScheduler {
	return &processScheduler{logger: logger}
}

// getOrCreateLocked returns the live registry, creating it on first use.
func (s *processScheduler) getOrCreateLocked() *processRegistry {
	if s.registry == nil {
		s.registry = &processRegistry{
			processes: make(map[Handle]*leaseProcess),
			createdAt: time.Now(),
		}
		s.generations++
		s.logger.Debug("lease scheduler started", "generation", s.generations)
	}
	return s.registry
}

// shutdownIfEmptyLocked releases the registry once no process is registered.
func (s *processScheduler) shutdownIfEmptyLocked() {
	if s.registry == nil || len(s.registry.processes) > 0 {
		return
	}
	uptime := time.Since(s.registry.createdAt)
	s.registry = nil
	s.logger.Debug("lease scheduler stopped", "generation", s.generations, "uptime", uptime.String())
}

// register adds p and accounts for its poll loop. Every process already
// registered is flagged in the same critical section, so p is the only live
// process once register returns; the newly flagged ones are returned. It
// fails once the scheduler is closed.
func (s *processScheduler) register(p *leaseProcess) ([]*leaseProcess, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	reg := s.getOrCreateLocked()
	var superseded []*leaseProcess
	for _, other := range reg.processes {
		if other.requestCancel() {
			superseded = append(superseded, other)
		}
	}
	reg.processes[p.handle] = p
	s.loops.Add(1)
	return superseded, true
}

// loopDone must be called exactly once per successful register.
func (s *processScheduler) loopDone() {
	s.loops.Done()
}

func (s *processScheduler) lookup(h Handle) (*leaseProcess, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return nil, false
	}
	p, ok := s.registry.processes[h]
	return p, ok
}

// remove deregisters h and tears the registry down when it becomes empty.
func (s *processScheduler) remove(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return false
	}
	if _, ok := s.registry.processes[h]; !ok {
		return false
	}
	delete(s.registry.processes, h)
	s.shutdownIfEmptyLocked()
	return true
}

// cancelAll sets the cancel flag on every registered process and returns
// the processes that were newly flagged.
func (s *processScheduler) cancelAll() []*leaseProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return nil
	}
	flagged := make([]*leaseProcess, 0, len(s.registry.processes))
	for _, p := range s.registry.processes {
		if p.requestCancel() {
			flagged = append(flagged, p)
		}
	}
	return flagged
}

func (s *processScheduler) handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return nil
	}
	out := make([]Handle, 0, len(s.registry.processes))
	for h := range s.registry.processes {
		out = append(out, h)
	}
	return out
}

// running reports whether the registry currently exists.
func (s *processScheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry != nil
}

// close refuses new registrations, flags every process and waits for all
// poll loops to settle their result. A loop is released before its
// completion callback runs, so close may be called from that callback.
func (s *processScheduler) close() {
	s.mu.Lock()
	s.closed = true
	if s.registry != nil {
		for _, p := range s.registry.processes {
			p.requestCancel()
		}
	}
	s.mu.Unlock()
	s.loops.Wait()
}
