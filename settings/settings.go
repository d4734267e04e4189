// Package settings holds the experiment parameters and loads them from
// defaults, an optional YAML file and ECOMP_ environment variables.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/sappelhoff/ecomp-experiment/monitor"
)

const (
	EnvPrefix = "ECOMP_"
	EnvConfig = "ECOMP_CONFIG"
	Version   = "0.1.0"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains the experiment parameters.
type Config struct {
	LogLevel string `koanf:"log_level"`

	// Monitor names a profile from Monitors or the builtin ones.
	Monitor    string                     `koanf:"monitor"`
	Monitors   map[string]monitor.Profile `koanf:"monitors"`
	Fullscreen bool                       `koanf:"fullscreen"`
	CheckFPS   bool                       `koanf:"check_fps"`

	// TriggerDevice is "serial" or "dlp". Without an address no TTL
	// triggers are sent. TriggerWaitMS must be at least one EEG sample.
	TriggerDevice  string  `koanf:"trigger_device"`
	TriggerAddress string  `koanf:"trigger_address"`
	TriggerWaitMS  float64 `koanf:"trigger_wait_ms"`

	MinITIMS         int     `koanf:"min_iti_ms"`
	MaxITIMS         int     `koanf:"max_iti_ms"`
	DigitRate        float64 `koanf:"digit_rate"`
	FadeRate         float64 `koanf:"fade_rate"`
	MaxWaitResponseS float64 `koanf:"max_wait_response_s"`
	FeedbackS        float64 `koanf:"feedback_s"`
	TimeoutWarningS  float64 `koanf:"timeout_warning_s"`

	TrackerDummy    bool   `koanf:"tk_dummy_mode"`
	TrackerAddress  string `koanf:"tk_address"`
	CalibrationType string `koanf:"calibration_type"`

	NSamples  int     `koanf:"n_samples"`
	NTrials   int     `koanf:"n_trials"`
	BlockSize int     `koanf:"block_size"`
	HardBreak int     `koanf:"hard_break"`
	PropRegen float64 `koanf:"prop_regen"`

	// Seed for trial generation, 0 draws a random seed.
	Seed uint64 `koanf:"seed"`

	DataDir string `koanf:"data_dir"`

	FontFile        string  `koanf:"font_file"`
	DigitHeightDeg  float64 `koanf:"digit_height_deg"`
	ChoiceHeightDeg float64 `koanf:"choice_height_deg"`
	TextHeightDeg   float64 `koanf:"text_height_deg"`
	RedColor        string  `koanf:"red_color"`
	BlueColor       string  `koanf:"blue_color"`
}

// New returns the defaults used in the lab.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Monitor:          "benq",
		CheckFPS:         true,
		TriggerDevice:    "serial",
		TriggerWaitMS:    5,
		MinITIMS:         500,
		MaxITIMS:         1500,
		DigitRate:        2.75,
		FadeRate:         12,
		MaxWaitResponseS: 3,
		FeedbackS:        3,
		TimeoutWarningS:  1,
		TrackerDummy:     true,
		TrackerAddress:   "100.1.1.1",
		CalibrationType:  "HV5",
		NSamples:         8,
		NTrials:          300,
		BlockSize:        30,
		HardBreak:        2,
		PropRegen:        0,
		DataDir:          "experiment_data",
		DigitHeightDeg:   5,
		ChoiceHeightDeg:  2,
		TextHeightDeg:    1,
		RedColor:         "230,60,60,255",
		BlueColor:        "60,120,230,255",
	}
}

// TriggerWait converts TriggerWaitMS to a duration.
func (c *Config) TriggerWait() time.Duration {
	return time.Duration(c.TriggerWaitMS * float64(time.Millisecond))
}

// MonitorProfile resolves the configured monitor.
func (c *Config) MonitorProfile() (monitor.Profile, error) {
	return monitor.Lookup(c.Monitor, c.Monitors)
}

// Load builds a Config by layering, from low to high precedence, the
// defaults, the YAML file at path (or $ECOMP_CONFIG if path is empty) and
// ECOMP_ environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// ECOMP_N_TRIALS -> n_trials
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.NSamples <= 0 || c.NSamples%2 != 0:
		return invalid("n_samples must be positive and even, got %d", c.NSamples)
	case c.NTrials <= 0:
		return invalid("n_trials must be positive, got %d", c.NTrials)
	case c.BlockSize <= 0:
		return invalid("block_size must be positive, got %d", c.BlockSize)
	case c.HardBreak <= 0:
		return invalid("hard_break must be positive, got %d", c.HardBreak)
	case c.PropRegen < 0 || c.PropRegen > 1:
		return invalid("prop_regen must be between 0 and 1, got %v", c.PropRegen)
	case c.MinITIMS < 0 || c.MaxITIMS < c.MinITIMS:
		return invalid("iti bounds must satisfy 0 <= min <= max, got %d and %d", c.MinITIMS, c.MaxITIMS)
	case c.DigitRate <= 0 || c.FadeRate <= 0:
		return invalid("digit_rate and fade_rate must be positive")
	case c.MaxWaitResponseS <= 0:
		return invalid("max_wait_response_s must be positive")
	case c.FeedbackS <= 0 || c.TimeoutWarningS <= 0:
		return invalid("feedback_s and timeout_warning_s must be positive")
	case c.TriggerWaitMS < 0:
		return invalid("trigger_wait_ms must not be negative")
	case c.CalibrationType != "HV5" && c.CalibrationType != "HV9":
		return invalid("calibration_type must be HV5 or HV9, got %q", c.CalibrationType)
	case c.TriggerDevice != "serial" && c.TriggerDevice != "dlp":
		return invalid("trigger_device must be serial or dlp, got %q", c.TriggerDevice)
	case c.DataDir == "":
		return invalid("data_dir must not be empty")
	}
	if _, err := c.MonitorProfile(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
