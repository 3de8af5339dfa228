package sensor

import (
	"context"
	"fmt"

	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/logger"
)

// Open sets up the source described by cfg and leaves it in interleaved
// acquisition mode. Any failure wraps ErrSensorInit.
//
//nolint:ireturn // Callers depend on the Source contract only.
func Open(ctx context.Context, cfg config.Sensor) (Source, error) {
	var (
		source Source
		err    error
	)

	switch cfg.Kind {
	case config.SensorSimulated:
		source = NewSimulated(cfg.AmbientTemperature(), cfg.Hotspot, cfg.HotspotPeriod, cfg.Seed)
	case config.SensorReplay:
		source, err = OpenReplay(cfg.ReplayFile)
	default:
		err = fmt.Errorf("unsupported sensor kind %q", cfg.Kind)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSensorInit, err)
	}

	logger.InfoKV(ctx, "Sensor initialized",
		"kind", cfg.Kind,
		"grid", fmt.Sprintf("%dx%d", thermal.Columns, thermal.Rows),
		"mode", ModeInterleaved.String(),
	)

	return source, nil
}
