package indicator

import "github.com/oshokin/thermal-sentinel/internal/domain/thermal"

// Mode is the visual state selected from a maximum temperature.
type Mode uint8

const (
	// ModeCold lights blue: maximum below 20C.
	ModeCold Mode = iota
	// ModeNormal lights green: maximum in [20C, 30C).
	ModeNormal
	// ModeWarm lights red: maximum in [30C, 50C).
	ModeWarm
	// ModeAlarm hands the indicator to the alarm controller: maximum >= 50C.
	ModeAlarm
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeCold:
		return "cold"
	case ModeNormal:
		return "normal"
	case ModeWarm:
		return "warm"
	case ModeAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// Output is the set of write-only binary signals of the node.
type Output interface {
	SetBlue(on bool)
	SetGreen(on bool)
	SetRed(on bool)
	SetTransducer(on bool)
}

// Owner reports whether another component currently owns the indicator.
type Owner interface {
	Active() bool
}

// ModeFor selects the mode for a maximum temperature.
// Ranges are closed on the low end: 20.0 is normal, 30.0 warm, 50.0 alarm.
func ModeFor(maximum float64) Mode {
	switch {
	case maximum < thermal.ColdCeiling:
		return ModeCold
	case maximum < thermal.WarmFloor:
		return ModeNormal
	case maximum < thermal.AlarmThreshold:
		return ModeWarm
	default:
		return ModeAlarm
	}
}

// Policy drives the colored signals from the latest maximum temperature.
type Policy struct {
	out   Output
	owner Owner
}

// NewPolicy creates a policy writing to out. The policy stays silent
// whenever owner reports Active; owner may be nil.
func NewPolicy(out Output, owner Owner) *Policy {
	return &Policy{
		out:   out,
		owner: owner,
	}
}

// Apply selects the mode for maximum and, unless the alarm owns the
// indicator, writes the matching colors. For ModeAlarm only blue is cleared:
// red and green are left to the alarm sequence that follows.
func (p *Policy) Apply(maximum float64) Mode {
	mode := ModeFor(maximum)

	if p.owner != nil && p.owner.Active() {
		return mode
	}

	if mode == ModeAlarm {
		p.out.SetBlue(false)
		return mode
	}

	p.out.SetBlue(mode == ModeCold)
	p.out.SetGreen(mode == ModeNormal)
	p.out.SetRed(mode == ModeWarm)

	return mode
}
