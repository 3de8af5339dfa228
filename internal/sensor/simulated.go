package sensor

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
)

const (
	// noiseAmplitude is the peak per-pixel noise of the simulated scene.
	noiseAmplitude = 0.3
	// hotspotSigma is the radius, in pixels, of the simulated hot object.
	hotspotSigma = 2.5
)

// Simulated renders a flat scene with noise and an optional hot object that
// heats up and cools down over a period. It stands in for the sensor on
// machines without one.
type Simulated struct {
	ambient float64
	hotspot float64
	period  time.Duration

	rng   *rand.Rand
	start time.Time
	now   func() time.Time
}

// SimulatedOption configures a Simulated source.
type SimulatedOption func(*Simulated)

// WithSimulatedClock overrides the clock driving the hot object.
func WithSimulatedClock(now func() time.Time) SimulatedOption {
	return func(s *Simulated) {
		s.now = now
	}
}

// NewSimulated creates a scene at ambient degrees with a hot object peaking at
// hotspot (0 disables it) once per period.
func NewSimulated(ambient, hotspot float64, period time.Duration, seed uint64, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		ambient: ambient,
		hotspot: hotspot,
		period:  period,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // Synthetic noise.
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.start = s.now()

	return s
}

// FetchFrame renders the scene at the current time.
func (s *Simulated) FetchFrame(dst *thermal.Frame) error {
	heat := s.heat()

	const (
		cx = thermal.Columns / 2
		cy = thermal.Rows / 2
	)

	for y := range thermal.Rows {
		for x := range thermal.Columns {
			v := s.ambient + (s.rng.Float64()*2-1)*noiseAmplitude

			if heat > 0 {
				dx, dy := float64(x-cx), float64(y-cy)
				falloff := math.Exp(-(dx*dx + dy*dy) / (2 * hotspotSigma * hotspotSigma))
				v += (s.hotspot - s.ambient) * heat * falloff
			}

			dst[y*thermal.Columns+x] = v
		}
	}

	return nil
}

// Close implements Source.
func (s *Simulated) Close() error {
	return nil
}

// heat is a triangle wave in [0, 1] over the period.
func (s *Simulated) heat() float64 {
	if s.hotspot == 0 || s.period <= 0 {
		return 0
	}

	elapsed := s.now().Sub(s.start) % s.period
	phase := float64(elapsed) / float64(s.period)

	return 1 - math.Abs(2*phase-1)
}
