package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"

	leaseauth "github.com/MrEthical07/leaseauth"
	"github.com/MrEthical07/leaseauth/remote"
)

// simPlatform authorizes every lease after a fixed number of status checks
// and injects 503s at the configured rate.
type simPlatform struct {
	checks    int
	faultRate float64

	leases atomic.Int64
	mu     sync.Mutex
	seen   map[string]int
	rng    *rand.Rand
}

func (p *simPlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case remote.DefaultLeasePath:
		n := p.leases.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":   fmt.Sprintf("LT%d", n),
			"nonce":  fmt.Sprintf("nonce-%d", n),
			"status": "created",
		})
	case remote.DefaultStatusPath:
		code, _ := body["lease_code"].(string)
		p.mu.Lock()
		fault := p.rng.Float64() < p.faultRate
		n := p.seen[code]
		if !fault {
			p.seen[code] = n + 1
		}
		p.mu.Unlock()

		switch {
		case fault:
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "busy"})
		case n < p.checks:
			_ = json.NewEncoder(w).Encode(map[string]any{"lease_status": statusFor(n)})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"lease_status":      "authorized",
				"session_token":     "session-" + code,
				"player_identifier": "player-" + code,
			})
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func statusFor(n int) string {
	switch n {
	case 0:
		return "created"
	case 1:
		return "claimed"
	default:
		return "verified"
	}
}

func main() {
	var (
		processes   = flag.Int("processes", 2000, "number of lease processes to run")
		concurrency = flag.Int("concurrency", 64, "number of engines polling in parallel")
		checks      = flag.Int("checks", 3, "status checks before the simulated platform authorizes")
		faultRate   = flag.Float64("fault-rate", 0.02, "fraction of status checks answered with 503")
		interval    = flag.Duration("interval", 2*time.Millisecond, "poll interval")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "leaseauth-loadtest", "session key prefix")
	)
	flag.Parse()

	if *processes <= 0 || *concurrency <= 0 || *checks < 0 || *interval <= 0 {
		fmt.Fprintln(os.Stderr, "processes, concurrency and interval must be > 0, checks must be >= 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	platform := &simPlatform{
		checks:    *checks,
		faultRate: *faultRate,
		seen:      make(map[string]int),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	srv := httptest.NewServer(platform)
	defer srv.Close()

	cfg := leaseauth.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.API.GameKey = "loadtest"
	cfg.Polling.MinInterval = time.Millisecond
	cfg.Polling.DefaultInterval = *interval
	cfg.Polling.RetryLimit = 50
	cfg.Session.RedisPrefix = *prefix

	engines := make([]*leaseauth.Engine, *concurrency)
	for i := range engines {
		engine, err := leaseauth.New().WithConfig(cfg).WithHTTPClient(srv.Client()).WithRedis(client).Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()
		engines[i] = engine
	}

	stats := runPhase(engines, *processes)

	fmt.Println("---- results ----")
	printStats("lease", stats)
	printCounters(engines)
}

func runPhase(engines []*leaseauth.Engine, processes int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, processes)
		mu        sync.Mutex
	)

	start := time.Now()
	for _, engine := range engines {
		wg.Add(1)
		go func(engine *leaseauth.Engine) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= processes {
					return
				}
				done := make(chan leaseauth.LeaseResult, 1)
				t0 := time.Now()
				_, err := engine.StartLeaseProcess(context.Background(), leaseauth.LeaseOptions{
					OnComplete: func(res leaseauth.LeaseResult) { done <- res },
				})
				res := <-done
				d := time.Since(t0)
				if err != nil || res.Status != leaseauth.LeaseStatusAuthorized {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(engine)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: processes=%d failures=%d total=%s processes/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func printCounters(engines []*leaseauth.Engine) {
	var checks, retries, authorized uint64
	for _, engine := range engines {
		snap := engine.MetricsSnapshot()
		checks += snap.Counters[leaseauth.MetricStatusCheck]
		retries += snap.Counters[leaseauth.MetricStatusTransientRetry]
		authorized += snap.Counters[leaseauth.MetricProcessAuthorized]
	}
	fmt.Printf("status_checks=%s transient_retries=%s authorized=%s\n",
		humanize.Comma(int64(checks)),
		humanize.Comma(int64(retries)),
		humanize.Comma(int64(authorized)),
	)
}
