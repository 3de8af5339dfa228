package indicator

import (
	"context"
	"sync/atomic"

	"github.com/oshokin/thermal-sentinel/internal/logger"
)

// Levels is a snapshot of all output signals.
type Levels struct {
	Blue       bool
	Green      bool
	Red        bool
	Transducer bool
}

// Pins is an in-memory Output. Writes come from the loop goroutine; Levels
// may be read from any goroutine. Every edge is logged at debug level on the
// context logger.
type Pins struct {
	//nolint:containedctx // Pins log asynchronously-read edges with the loop's logger.
	ctx context.Context

	blue       atomic.Bool
	green      atomic.Bool
	red        atomic.Bool
	transducer atomic.Bool
}

// NewPins creates a pin bank with every signal deasserted.
func NewPins(ctx context.Context) *Pins {
	return &Pins{ctx: logger.WithName(ctx, "pins")}
}

// SetBlue drives the blue indicator.
func (p *Pins) SetBlue(on bool) { p.set(&p.blue, "blue", on) }

// SetGreen drives the green indicator.
func (p *Pins) SetGreen(on bool) { p.set(&p.green, "green", on) }

// SetRed drives the red indicator.
func (p *Pins) SetRed(on bool) { p.set(&p.red, "red", on) }

// SetTransducer drives the buzzer/laser transducer.
func (p *Pins) SetTransducer(on bool) { p.set(&p.transducer, "transducer", on) }

// Levels returns the current level of every signal.
func (p *Pins) Levels() Levels {
	return Levels{
		Blue:       p.blue.Load(),
		Green:      p.green.Load(),
		Red:        p.red.Load(),
		Transducer: p.transducer.Load(),
	}
}

func (p *Pins) set(pin *atomic.Bool, name string, on bool) {
	if pin.Swap(on) == on {
		return
	}

	logger.DebugKV(p.ctx, "Signal edge", "pin", name, "level", on)
}
