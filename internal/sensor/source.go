package sensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
)

// Source is a ready sensor handle.
type Source interface {
	// FetchFrame fills dst with one full frame. On error dst content is undefined.
	FetchFrame(dst *thermal.Frame) error
	// Close releases the handle.
	Close() error
}

// AcquisitionMode is the readout pattern the sensor was configured with.
type AcquisitionMode uint8

// ModeInterleaved reads alternating rows per subpage. It is the only mode
// the node configures.
const ModeInterleaved AcquisitionMode = 0

// String returns the lower-case mode name.
func (m AcquisitionMode) String() string {
	switch m {
	case ModeInterleaved:
		return "interleaved"
	default:
		return "unknown"
	}
}

var (
	// ErrSensorRead matches every failed frame fetch.
	ErrSensorRead = errors.New("sensor read failed")
	// ErrSensorInit is returned when no source could be set up. It is fatal.
	ErrSensorInit = errors.New("sensor init failed")
	// ErrNotDue means the sampling interval has not elapsed; nothing changed.
	ErrNotDue = errors.New("sample not due")
)

// ReadError reports a failed fetch. It matches ErrSensorRead and the cause
// with errors.Is.
type ReadError struct {
	// At is the loop time of the attempt.
	At time.Duration
	// Err is the error returned by the source.
	Err error
}

// Error implements error.
func (e *ReadError) Error() string {
	return fmt.Sprintf("sensor read at %s: %v", e.At, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ReadError) Unwrap() []error {
	return []error{ErrSensorRead, e.Err}
}
