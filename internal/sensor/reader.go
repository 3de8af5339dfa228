package sensor

import (
	"time"

	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
)

// Indicator selects and shows the visual mode for a maximum temperature.
type Indicator interface {
	Apply(maximum float64) indicator.Mode
}

// Trigger starts the alarm. Calls on a running alarm are no-ops.
type Trigger interface {
	Trigger(now time.Duration) bool
}

// Sink receives every committed frame and every failure.
type Sink interface {
	Commit(frame *thermal.Frame, stats thermal.Stats)
	RecordFailure(err error)
}

// Update describes a successful sample.
type Update struct {
	// Stats are the aggregates of the new frame.
	Stats thermal.Stats
	// Mode is the indicator mode selected for Stats.Maximum.
	Mode indicator.Mode
	// Triggered is true when this sample started a new alarm.
	Triggered bool
	// At is the loop time of the sample.
	At time.Duration
}

// Reader owns the current frame and its statistics.
type Reader struct {
	source    Source
	indicator Indicator
	alarm     Trigger
	sink      Sink

	// frame and stats are the last successful read.
	frame thermal.Frame
	stats thermal.Stats
	// scratch receives fetches so a failed read never tears frame.
	scratch thermal.Frame

	// last is the loop time of the last attempt.
	last time.Duration
	// attempted is false until the first Sample call past the interval.
	attempted bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithIndicator routes every new maximum to ind.
func WithIndicator(ind Indicator) Option {
	return func(r *Reader) {
		r.indicator = ind
	}
}

// WithAlarm triggers t when the maximum reaches thermal.AlarmThreshold.
func WithAlarm(t Trigger) Option {
	return func(r *Reader) {
		r.alarm = t
	}
}

// WithSink publishes commits and failures to s.
func WithSink(s Sink) Option {
	return func(r *Reader) {
		r.sink = s
	}
}

// NewReader creates a reader over a ready source.
func NewReader(source Source, opts ...Option) *Reader {
	r := &Reader{
		source: source,
		stats:  thermal.InitialStats(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Sample fetches a frame when thermal.SampleInterval has elapsed since the
// last attempt; the first call always fetches. It returns ErrNotDue when it
// is too early, and a *ReadError when the source fails, in which case the
// previous frame and statistics stay in place and nothing else is touched.
// Failed attempts count toward the interval: retries happen no faster than
// regular samples.
func (r *Reader) Sample(now time.Duration) (Update, error) {
	if r.attempted && now-r.last < thermal.SampleInterval {
		return Update{}, ErrNotDue
	}

	r.attempted = true
	r.last = now

	if err := r.source.FetchFrame(&r.scratch); err != nil {
		readErr := &ReadError{At: now, Err: err}

		if r.sink != nil {
			r.sink.RecordFailure(readErr)
		}

		return Update{}, readErr
	}

	r.frame = r.scratch
	r.stats = thermal.ComputeStats(&r.frame)

	if r.sink != nil {
		r.sink.Commit(&r.frame, r.stats)
	}

	update := Update{
		Stats: r.stats,
		Mode:  indicator.ModeFor(r.stats.Maximum),
		At:    now,
	}

	if r.indicator != nil {
		update.Mode = r.indicator.Apply(r.stats.Maximum)
	}

	if r.alarm != nil && r.stats.Maximum >= thermal.AlarmThreshold {
		update.Triggered = r.alarm.Trigger(now)
	}

	return update, nil
}

// Frame returns a copy of the last successfully read frame.
func (r *Reader) Frame() thermal.Frame {
	return r.frame
}

// Stats returns the statistics of the last successfully read frame.
func (r *Reader) Stats() thermal.Stats {
	return r.stats
}
