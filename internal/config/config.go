package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/logger"
)

// Config holds the settings of thermal-node and thermal-probe.
type Config struct {
	// HTTPAddress is the listen address of the snapshot web endpoint.
	HTTPAddress string `yaml:"http_addr"`
	// GRPCAddress is the listen address of the ThermalService.
	GRPCAddress string `yaml:"grpc_addr"`
	// LogLevel is the global log level.
	LogLevel string `yaml:"log_level"`
	// SignalLogLevel is the level of the signal-edge logger, kept apart
	// because the alarm produces an edge every 50ms.
	SignalLogLevel string `yaml:"signal_log_level"`
	// TickInterval is the period of the cooperative loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Sensor selects and tunes the frame source.
	Sensor Sensor `yaml:"sensor"`
	// Telemetry configures the optional MQTT sink.
	Telemetry Telemetry `yaml:"telemetry"`
}

// Sensor configures the frame source handed to the reader.
type Sensor struct {
	// Kind is SensorSimulated or SensorReplay.
	Kind string `yaml:"kind"`
	// ReplayFile is the recording read by the replay source.
	ReplayFile string `yaml:"replay_file,omitempty"`
	// Ambient is the base scene temperature of the simulated source.
	// Nil means DefaultAmbient; 0 is a valid scene temperature.
	Ambient *float64 `yaml:"ambient,omitempty"`
	// Hotspot is the peak temperature of the simulated hot object; 0 disables it.
	Hotspot float64 `yaml:"hotspot,omitempty"`
	// HotspotPeriod is the time the simulated hot object takes to heat up and cool down.
	HotspotPeriod time.Duration `yaml:"hotspot_period,omitempty"`
	// Seed makes the simulated noise reproducible.
	Seed uint64 `yaml:"seed,omitempty"`
}

// AmbientTemperature returns Ambient, or DefaultAmbient when it is unset.
func (s Sensor) AmbientTemperature() float64 {
	if s.Ambient == nil {
		return DefaultAmbient
	}

	return *s.Ambient
}

// Telemetry configures the MQTT sink. An empty Broker disables it.
type Telemetry struct {
	// Broker is the MQTT broker URL, e.g. tcp://127.0.0.1:1883.
	Broker string `yaml:"broker,omitempty"`
	// ClientID is the MQTT client identifier.
	ClientID string `yaml:"client_id,omitempty"`
	// Topic is the prefix of the published topics.
	Topic string `yaml:"topic,omitempty"`
}

// Enabled reports whether a broker is configured.
func (t Telemetry) Enabled() bool {
	return t.Broker != ""
}

const (
	// DefaultConfigFilename is the default filename for node settings.
	DefaultConfigFilename = "thermal-sentinel.yaml"

	// DefaultHTTPAddress serves the snapshot page on all interfaces.
	DefaultHTTPAddress = ":8080"
	// DefaultGRPCAddress serves the ThermalService on all interfaces.
	DefaultGRPCAddress = ":50051"
	// DefaultTickInterval keeps the loop well below the 50ms off phase.
	DefaultTickInterval = 5 * time.Millisecond
	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second
	// DefaultAmbient is the scene temperature of the simulated source.
	DefaultAmbient = 22.0
	// DefaultHotspotPeriod is the heat-up/cool-down cycle of the simulated hot object.
	DefaultHotspotPeriod = time.Minute
	// DefaultTopic prefixes MQTT topics.
	DefaultTopic = "thermal-sentinel"

	// SensorSimulated generates synthetic frames.
	SensorSimulated = "simulated"
	// SensorReplay reads recorded frames from a file.
	SensorReplay = "replay"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errTickTooSlow is returned when the loop could not resolve the off phase.
	errTickTooSlow = errors.New("tick interval must be positive and not exceed the alarm off phase")
	// errUnknownSensor is returned for an unsupported sensor kind.
	errUnknownSensor = errors.New("unknown sensor kind")
	// errReplayFileRequired is returned when the replay source has no file.
	errReplayFileRequired = errors.New("replay sensor requires replay_file")
)

// Load reads configuration from the provided path and validates it.
// When path is empty and the default file does not exist, defaults are used.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks every field.
//
//nolint:cyclop // A flat list of independent checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.HTTPAddress == "" {
		settings.HTTPAddress = DefaultHTTPAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
		return fmt.Errorf("invalid http address: %w", err)
	}

	if settings.GRPCAddress == "" {
		settings.GRPCAddress = DefaultGRPCAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.GRPCAddress); err != nil {
		return fmt.Errorf("invalid grpc address: %w", err)
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}

	if settings.SignalLogLevel == "" {
		settings.SignalLogLevel = "warn"
	}

	if _, ok := logger.ParseLogLevel(settings.SignalLogLevel); !ok {
		return fmt.Errorf("invalid signal log level %q", settings.SignalLogLevel)
	}

	if settings.TickInterval == 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if settings.TickInterval < 0 || settings.TickInterval > alarm.OffDuration {
		return fmt.Errorf("%w: %s", errTickTooSlow, settings.TickInterval)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateSensor(&settings.Sensor); err != nil {
		return err
	}

	return validateTelemetry(&settings.Telemetry)
}

func validateSensor(s *Sensor) error {
	if s.Kind == "" {
		s.Kind = SensorSimulated
	}

	switch s.Kind {
	case SensorSimulated:
		if s.Ambient == nil {
			ambient := DefaultAmbient
			s.Ambient = &ambient
		}

		if s.HotspotPeriod <= 0 {
			s.HotspotPeriod = DefaultHotspotPeriod
		}
	case SensorReplay:
		if s.ReplayFile == "" {
			return errReplayFileRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownSensor, s.Kind)
	}

	return nil
}

func validateTelemetry(t *Telemetry) error {
	if !t.Enabled() {
		return nil
	}

	if _, err := url.ParseRequestURI(t.Broker); err != nil {
		return fmt.Errorf("invalid telemetry broker URI: %w", err)
	}

	if t.ClientID == "" {
		t.ClientID = DefaultTopic
	}

	if t.Topic == "" {
		t.Topic = DefaultTopic
	}

	return nil
}
