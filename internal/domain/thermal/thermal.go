package thermal

import (
	"fmt"
	"math"
	"time"
)

const (
	// Columns is the sensor width in pixels.
	Columns = 32
	// Rows is the sensor height in pixels.
	Rows = 24
	// Pixels is the number of readings in one frame.
	Pixels = Columns * Rows

	// SampleInterval is the minimum spacing between two frame fetches.
	SampleInterval = 500 * time.Millisecond

	// ColdCeiling is the first maximum temperature that is no longer "cold".
	ColdCeiling = 20.0
	// WarmFloor is the first maximum temperature considered "warm".
	WarmFloor = 30.0
	// AlarmThreshold is the maximum temperature that triggers the alarm.
	AlarmThreshold = 50.0

	// InitialMinimum is the published minimum before the first successful sample.
	InitialMinimum = 100.0
)

// Frame is one full sensor read in degrees Celsius, row-major.
type Frame [Pixels]float64

// At returns the reading at column x, row y.
func (f *Frame) At(x, y int) float64 {
	return f[y*Columns+x]
}

// Fill sets every cell to v.
func (f *Frame) Fill(v float64) {
	for i := range f {
		f[i] = v
	}
}

// Stats are the aggregates of a single Frame.
type Stats struct {
	Average float64
	Maximum float64
	Minimum float64
}

// InitialStats are published until the first frame is read.
func InitialStats() Stats {
	return Stats{Minimum: InitialMinimum}
}

// ComputeStats makes one linear pass over f.
// The extremes are seeded with sentinels outside any plausible reading so they
// can only move toward the data.
func ComputeStats(f *Frame) Stats {
	var (
		sum     float64
		maximum = -math.MaxFloat64
		minimum = math.MaxFloat64
	)

	for _, v := range f {
		sum += v

		if v > maximum {
			maximum = v
		}

		if v < minimum {
			minimum = v
		}
	}

	return Stats{
		Average: sum / Pixels,
		Maximum: maximum,
		Minimum: minimum,
	}
}

// String renders the stats the way the sample log line shows them.
func (s Stats) String() string {
	return fmt.Sprintf("Avg: %.1f  Max: %.1f  Min: %.1f", s.Average, s.Maximum, s.Minimum)
}
