package infra

import (
	"errors"
	"sync"
	"time"
)

// The scraper sidecar is the one dependency that fails in bursts: supplier
// sites throw up anti-bot walls, the sidecar container restarts, rate limits
// kick in. Fetches go through a small three-state breaker so a dying sidecar
// degrades to fast local failures instead of piles of hung HTTP calls.

// BreakerState is the breaker's position in its closed/open/probing cycle.
type BreakerState int

const (
	BreakerClosed  BreakerState = iota // fetches flow through
	BreakerOpen                        // fast-failing, sidecar presumed down
	BreakerProbing                     // cool-down elapsed, test fetches allowed
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerProbing:
		return "probing"
	default:
		return "unknown"
	}
}

// ErrScraperUnavailable is returned by Call while the breaker is open, before
// the sidecar is contacted.
var ErrScraperUnavailable = errors.New("scraper sidecar unavailable, circuit open")

// BreakerSettings tunes the scraper breaker.
type BreakerSettings struct {
	// TripAfter is the consecutive-failure count that opens the breaker.
	TripAfter int
	// RecoverAfter is the consecutive-success count while probing that
	// closes it again.
	RecoverAfter int
	// CoolDown is how long the breaker fast-fails before allowing probes.
	CoolDown time.Duration
}

// DefaultBreakerSettings trips after five failed fetches, fast-fails for a
// minute, and closes after two clean probes. A minute comfortably covers the
// sidecar container's restart time.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		TripAfter:    5,
		RecoverAfter: 2,
		CoolDown:     time.Minute,
	}
}

// ScraperBreaker guards calls to the scraper sidecar. Safe for concurrent use
// by the scrape workers and the health endpoint.
type ScraperBreaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	probeHits int
	openedAt  time.Time

	tripAfter    int
	recoverAfter int
	coolDown     time.Duration
}

func NewScraperBreaker(s BreakerSettings) *ScraperBreaker {
	def := DefaultBreakerSettings()
	if s.TripAfter <= 0 {
		s.TripAfter = def.TripAfter
	}
	if s.RecoverAfter <= 0 {
		s.RecoverAfter = def.RecoverAfter
	}
	if s.CoolDown <= 0 {
		s.CoolDown = def.CoolDown
	}
	return &ScraperBreaker{
		state:        BreakerClosed,
		tripAfter:    s.TripAfter,
		recoverAfter: s.RecoverAfter,
		coolDown:     s.CoolDown,
	}
}

// State reports the breaker's position, promoting an expired open period to
// probing on read. The scrape cron and the health endpoint both poll this.
func (b *ScraperBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *ScraperBreaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && time.Since(b.openedAt) >= b.coolDown {
		b.state = BreakerProbing
		b.probeHits = 0
	}
	return b.state
}

// Call runs fetch through the breaker. While open it returns
// ErrScraperUnavailable without touching the sidecar; otherwise fetch's error
// is passed through and counted.
func (b *ScraperBreaker) Call(fetch func() error) error {
	b.mu.Lock()
	if b.stateLocked() == BreakerOpen {
		b.mu.Unlock()
		return ErrScraperUnavailable
	}
	b.mu.Unlock()

	err := fetch()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *ScraperBreaker) recordFailure() {
	b.openedAt = time.Now()
	switch b.stateLocked() {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.tripAfter {
			b.state = BreakerOpen
			b.failures = 0
		}
	case BreakerProbing:
		// One bad probe and the sidecar clearly is not back yet.
		b.state = BreakerOpen
		b.probeHits = 0
	}
}

func (b *ScraperBreaker) recordSuccess() {
	switch b.stateLocked() {
	case BreakerClosed:
		b.failures = 0
	case BreakerProbing:
		b.probeHits++
		if b.probeHits >= b.recoverAfter {
			b.state = BreakerClosed
			b.failures = 0
			b.probeHits = 0
		}
	}
}
