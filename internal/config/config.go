package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes caps the size of a config file. Anything larger is
// assumed to be the wrong file.
const MaxConfigFileBytes = 1 << 20

// ValidateConfigPath checks that path points at a .yaml file inside a
// configs/ directory, rejecting traversal out of it.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Ext(abs) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	if strings.Contains(path, "..") && filepath.Clean(path) != path {
		return fmt.Errorf("config path must not traverse directories: %s", path)
	}
	return nil
}

// LightSensorConfig locates the paired lux sensors on the I2C mux.
type LightSensorConfig struct {
	OuterChannel int `yaml:"outer_channel"` // TCA9548A channel of the outer (window-side) sensor
	InnerChannel int `yaml:"inner_channel"`
}

// MotorConfig holds the stepper wiring.
type MotorConfig struct {
	Pins        []int `yaml:"pins"` // ULN2003 IN1-IN4 (BCM)
	StepDelayMs int   `yaml:"step_delay_ms"`
}

// DistanceSensorConfig holds the HC-SR04 wiring and the outer-edge threshold.
type DistanceSensorConfig struct {
	TrigPin     int     `yaml:"trig_pin"`
	EchoPin     int     `yaml:"echo_pin"`
	ThresholdCm float64 `yaml:"threshold_cm"` // nearer than this counts as in range
	TimeoutMs   int     `yaml:"timeout_ms"`
}

// VoltageReaderConfig holds the ADC channel and divider resistances.
type VoltageReaderConfig struct {
	Channel int     `yaml:"channel"`
	R1KOhm  float64 `yaml:"r1_kohm"`
	R2KOhm  float64 `yaml:"r2_kohm"`
}

// PlatformConfig describes one mobile platform. Only the light sensor is
// required; a platform without a motor is sense-only.
type PlatformConfig struct {
	Name           string                `yaml:"name"`
	LightSensor    LightSensorConfig     `yaml:"light_sensor"`
	Motor          *MotorConfig          `yaml:"motor,omitempty"`
	DistanceSensor *DistanceSensorConfig `yaml:"distance_sensor,omitempty"`
	VoltageReader  *VoltageReaderConfig  `yaml:"voltage_reader,omitempty"`
	CsvLog         string                `yaml:"csv_log"`
}

// ButtonsConfig holds the manual-override button wiring.
type ButtonsConfig struct {
	Chip            string `yaml:"chip"` // gpiochip name, e.g. "gpiochip0"
	OuterPin        int    `yaml:"outer_pin"`
	InnerPin        int    `yaml:"inner_pin"`
	EnablePin       int    `yaml:"enable_pin"` // avoider enable toggle
	HoldThresholdMs int    `yaml:"hold_threshold_ms"`
}

// PanelConfig holds the indicator outputs.
type PanelConfig struct {
	OuterLedPin  int `yaml:"outer_led_pin"`
	InnerLedPin  int `yaml:"inner_led_pin"`
	EnableLedPin int `yaml:"enable_led_pin"`
	BuzzerPin    int `yaml:"buzzer_pin"`
}

// AvoiderConfig tunes the shadow avoider.
type AvoiderConfig struct {
	DiffPercentCutoff  int `yaml:"diff_percent_cutoff"`
	DimLuxThreshold    int `yaml:"dim_lux_threshold"`
	BrightLuxThreshold int `yaml:"bright_lux_threshold"`
	RunIntervalSecs    int `yaml:"run_interval_secs"`
}

// DefaultsConfig contains generic parameters (intervals, logging, etc.).
type DefaultsConfig struct {
	MockGPIO          bool   `yaml:"mock_gpio"` // use mock GPIO and simulated sensors (dev/test)
	I2CBus            string `yaml:"i2c_bus"`
	LogLevel          string `yaml:"log_level"` // trace/debug/info/warn/error
	ControlIntervalMs int    `yaml:"control_interval_ms"`
	PrintIntervalMs   int    `yaml:"print_interval_ms"`
	PingIntervalSecs  int    `yaml:"ping_interval_secs"` // battery keepalive cadence
	PingDurationMs    int    `yaml:"ping_duration_ms"`
}

// Config aggregates all application configuration.
type Config struct {
	Defaults  DefaultsConfig   `yaml:"defaults"`
	Platforms []PlatformConfig `yaml:"platforms"`
	Buttons   *ButtonsConfig   `yaml:"buttons,omitempty"`
	Panel     *PanelConfig     `yaml:"panel,omitempty"`
	Avoider   AvoiderConfig    `yaml:"avoider"`
}

// Load reads a YAML file and returns the validated configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", MaxConfigFileBytes)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if len(cfg.Platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}
	for i := range cfg.Platforms {
		p := &cfg.Platforms[i]
		if p.Name == "" {
			return nil, fmt.Errorf("platforms[%d].name is required", i)
		}
		if p.Motor != nil {
			if len(p.Motor.Pins) != 4 {
				return nil, fmt.Errorf("platform %s: motor.pins must list exactly 4 pins", p.Name)
			}
			if p.Motor.StepDelayMs <= 0 {
				p.Motor.StepDelayMs = 1
			}
		}
		if p.DistanceSensor != nil {
			if p.DistanceSensor.ThresholdCm <= 0 {
				return nil, fmt.Errorf("platform %s: distance_sensor.threshold_cm must be > 0", p.Name)
			}
			if p.DistanceSensor.TimeoutMs <= 0 {
				p.DistanceSensor.TimeoutMs = 50
			}
		}
		if p.VoltageReader != nil && p.VoltageReader.R2KOhm <= 0 {
			return nil, fmt.Errorf("platform %s: voltage_reader.r2_kohm must be > 0", p.Name)
		}
	}

	// Default values for intervals and logging
	if cfg.Defaults.I2CBus == "" {
		cfg.Defaults.I2CBus = "/dev/i2c-1"
	}
	if cfg.Defaults.LogLevel == "" {
		cfg.Defaults.LogLevel = "info"
	}
	if cfg.Defaults.ControlIntervalMs <= 0 {
		cfg.Defaults.ControlIntervalMs = 500
	}
	if cfg.Defaults.PrintIntervalMs <= 0 {
		cfg.Defaults.PrintIntervalMs = 500
	}
	if cfg.Defaults.PingIntervalSecs <= 0 {
		cfg.Defaults.PingIntervalSecs = 85
	}
	if cfg.Defaults.PingDurationMs <= 0 {
		cfg.Defaults.PingDurationMs = 500
	}

	// Default values for the avoider
	if cfg.Avoider.DiffPercentCutoff <= 0 {
		cfg.Avoider.DiffPercentCutoff = 30
	}
	if cfg.Avoider.DimLuxThreshold <= 0 {
		cfg.Avoider.DimLuxThreshold = 300
	}
	if cfg.Avoider.BrightLuxThreshold <= 0 {
		cfg.Avoider.BrightLuxThreshold = 500
	}
	if cfg.Avoider.DimLuxThreshold >= cfg.Avoider.BrightLuxThreshold {
		return nil, fmt.Errorf("avoider.dim_lux_threshold (%d) must be below bright_lux_threshold (%d)",
			cfg.Avoider.DimLuxThreshold, cfg.Avoider.BrightLuxThreshold)
	}
	if cfg.Avoider.RunIntervalSecs <= 0 {
		cfg.Avoider.RunIntervalSecs = 10
	}

	if cfg.Buttons != nil {
		if cfg.Buttons.Chip == "" {
			cfg.Buttons.Chip = "gpiochip0"
		}
		if cfg.Buttons.HoldThresholdMs <= 0 {
			cfg.Buttons.HoldThresholdMs = 100
		}
	}

	return &cfg, nil
}

// ControlInterval returns the pause between control loop ticks.
func (c *Config) ControlInterval() time.Duration {
	return time.Duration(c.Defaults.ControlIntervalMs) * time.Millisecond
}

// PrintInterval returns the minimum pause between console status rows.
func (c *Config) PrintInterval() time.Duration {
	return time.Duration(c.Defaults.PrintIntervalMs) * time.Millisecond
}

// PingInterval returns the battery keepalive cadence.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Defaults.PingIntervalSecs) * time.Second
}

// PingDuration returns how long a keepalive ping energizes the motor.
func (c *Config) PingDuration() time.Duration {
	return time.Duration(c.Defaults.PingDurationMs) * time.Millisecond
}

// RunInterval returns the shadow avoider's decision cadence.
func (c *Config) RunInterval() time.Duration {
	return time.Duration(c.Avoider.RunIntervalSecs) * time.Second
}

// HoldThreshold returns how long a button must stay down to count as held.
func (b *ButtonsConfig) HoldThreshold() time.Duration {
	return time.Duration(b.HoldThresholdMs) * time.Millisecond
}

// StepDelay returns the delay between motor half-steps.
func (m *MotorConfig) StepDelay() time.Duration {
	return time.Duration(m.StepDelayMs) * time.Millisecond
}

// Timeout returns the echo timeout for the distance sensor.
func (d *DistanceSensorConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}
