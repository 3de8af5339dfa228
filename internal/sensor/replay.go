package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
)

// maxLineSize fits 768 values with generous formatting.
const maxLineSize = 64 * 1024

var (
	// errNoFrames is returned for a recording without any frame.
	errNoFrames = errors.New("recording contains no frames")
	// errFrameSize is returned for a line that is not a full frame.
	errFrameSize = errors.New("unexpected number of values")
)

// Replay serves recorded frames in order and starts over at the end.
type Replay struct {
	frames []thermal.Frame
	next   int
}

// OpenReplay loads a recording: one frame per line, 768 comma separated
// values in row-major order. Empty lines and lines starting with '#' are
// skipped.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	return ReadReplay(f)
}

// ReadReplay loads a recording from r.
func ReadReplay(r io.Reader) (*Replay, error) {
	var (
		replay  = new(Replay)
		scanner = bufio.NewScanner(r)
		lineNo  int
	)

	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var frame thermal.Frame
		if err := ParseFrame(line, &frame); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		replay.frames = append(replay.frames, frame)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan recording: %w", err)
	}

	if len(replay.frames) == 0 {
		return nil, errNoFrames
	}

	return replay, nil
}

// ParseFrame decodes one comma separated frame into dst.
func ParseFrame(line string, dst *thermal.Frame) error {
	fields := strings.Split(line, ",")
	if len(fields) != thermal.Pixels {
		return fmt.Errorf("%w: got %d, want %d", errFrameSize, len(fields), thermal.Pixels)
	}

	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}

		dst[i] = v
	}

	return nil
}

// Len returns the number of frames in the recording.
func (r *Replay) Len() int {
	return len(r.frames)
}

// FetchFrame copies the next recorded frame into dst.
func (r *Replay) FetchFrame(dst *thermal.Frame) error {
	*dst = r.frames[r.next]
	r.next = (r.next + 1) % len(r.frames)

	return nil
}

// Close implements Source.
func (r *Replay) Close() error {
	return nil
}
