package snapshot

import (
	"sync"
	"time"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
)

// Health tells readers how fresh the published data is.
type Health struct {
	// Samples is the number of successful reads.
	Samples uint64
	// Failures is the number of failed reads.
	Failures uint64
	// LastSampleAt is the wall time of the last successful read.
	LastSampleAt time.Time
	// LastFailureAt is the wall time of the last failed read.
	LastFailureAt time.Time
	// LastError is the message of the last failed read.
	LastError string
	// Stale is true when the most recent read attempt failed, i.e. the
	// published frame is older than one sampling interval.
	Stale bool
}

// Status is the node state derived from the latest frame.
type Status struct {
	// Mode is the indicator mode of the latest maximum.
	Mode indicator.Mode
	// Alarm is the alarm controller state as of the last loop step.
	Alarm alarm.State
}

// Snapshot is every published value taken under a single lock.
type Snapshot struct {
	Frame  thermal.Frame
	Stats  thermal.Stats
	Health Health
	Status Status
}

// Publisher stores the latest values. The zero value is not usable; create
// one with NewPublisher.
type Publisher struct {
	// mu guards every field below.
	mu sync.RWMutex

	frame  thermal.Frame
	stats  thermal.Stats
	health Health
	status Status

	// now stamps commits and failures.
	now func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock overrides the wall clock used for health timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher returns a publisher holding the initial values: a zero frame
// and thermal.InitialStats.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		stats: thermal.InitialStats(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Commit replaces the frame and statistics.
func (p *Publisher) Commit(frame *thermal.Frame, stats thermal.Stats) {
	at := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.frame = *frame
	p.stats = stats
	p.health.Samples++
	p.health.LastSampleAt = at
	p.health.Stale = false
}

// RecordFailure marks the published data as stale. Frame and stats are kept.
func (p *Publisher) RecordFailure(err error) {
	at := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.health.Failures++
	p.health.LastFailureAt = at
	p.health.Stale = true

	if err != nil {
		p.health.LastError = err.Error()
	}
}

// SetMode publishes the indicator mode of the latest frame.
func (p *Publisher) SetMode(mode indicator.Mode) {
	p.mu.Lock()
	p.status.Mode = mode
	p.mu.Unlock()
}

// SetAlarm publishes the alarm state.
func (p *Publisher) SetAlarm(state alarm.State) {
	p.mu.Lock()
	p.status.Alarm = state
	p.mu.Unlock()
}

// ReadFrame returns a copy of the latest frame.
func (p *Publisher) ReadFrame() thermal.Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.frame
}

// ReadStats returns the latest statistics.
func (p *Publisher) ReadStats() thermal.Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.stats
}

// ReadHealth returns the freshness report.
func (p *Publisher) ReadHealth() Health {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.health
}

// ReadStatus returns the mode and alarm state.
func (p *Publisher) ReadStatus() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status
}

// Read returns all published values at once.
func (p *Publisher) Read() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Frame:  p.frame,
		Stats:  p.stats,
		Health: p.health,
		Status: p.status,
	}
}
