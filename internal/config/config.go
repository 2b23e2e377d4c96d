// Package config loads the daemon configuration from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/mqtt"
)

// Config represents the daemon configuration.
type Config struct {
	Button ButtonConfig `yaml:"button" toml:"button"`
	GPIO   GPIOConfig   `yaml:"gpio" toml:"gpio"`
	MQTT   MQTTConfig   `yaml:"mqtt" toml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http" toml:"http"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// ButtonConfig contains the debounce and press classification windows.
// All windows are converted to ticks of TickInterval, truncating.
type ButtonConfig struct {
	Name            string        `yaml:"name" toml:"name"`
	TickInterval    time.Duration `yaml:"tick_interval" toml:"tick_interval"`
	PressDebounce   time.Duration `yaml:"press_debounce" toml:"press_debounce"`
	ReleaseDebounce time.Duration `yaml:"release_debounce" toml:"release_debounce"`
	LongPress       time.Duration `yaml:"long_press" toml:"long_press"` // 0 = short-press mode
}

// GPIOConfig selects the input line.
type GPIOConfig struct {
	Chip      string `yaml:"chip" toml:"chip"`
	Line      int    `yaml:"line" toml:"line"`
	Bias      string `yaml:"bias" toml:"bias"`             // pull-up, pull-down, disabled
	ActiveLow bool   `yaml:"active_low" toml:"active_low"` // button shorts the line to ground
}

// MQTTConfig contains broker connection settings.
type MQTTConfig struct {
	Broker      string        `yaml:"broker" toml:"broker"`
	ClientID    string        `yaml:"client_id" toml:"client_id"`
	TopicPrefix string        `yaml:"topic_prefix" toml:"topic_prefix"`
	Heartbeat   time.Duration `yaml:"heartbeat" toml:"heartbeat"` // 0 disables
	OutboxSize  int           `yaml:"outbox_size" toml:"outbox_size"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr" toml:"addr"` // empty disables
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Button: ButtonConfig{
			Name:            "button",
			TickInterval:    10 * time.Millisecond,
			PressDebounce:   50 * time.Millisecond,
			ReleaseDebounce: 50 * time.Millisecond,
			LongPress:       1 * time.Second,
		},
		GPIO: GPIOConfig{
			Chip:      gpio.DefaultChip,
			Line:      gpio.DefaultLine,
			Bias:      string(gpio.BiasPullUp),
			ActiveLow: true,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "button-sensor",
			TopicPrefix: mqtt.DefaultTopicPrefix,
			Heartbeat:   15 * time.Minute,
			OutboxSize:  mqtt.DefaultOutboxSize,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isTOML(filename) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML or TOML file, chosen by extension.
func (c *Config) Save(filename string) error {
	var data []byte
	if isTOML(filename) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills required fields that the file left empty.
// Zero debounce and long-press windows are meaningful and are kept.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Button.Name == "" {
		c.Button.Name = def.Button.Name
	}
	if c.Button.TickInterval == 0 {
		c.Button.TickInterval = def.Button.TickInterval
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.GPIO.Bias == "" {
		c.GPIO.Bias = def.GPIO.Bias
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.MQTT.OutboxSize == 0 {
		c.MQTT.OutboxSize = def.MQTT.OutboxSize
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate checks the values the button state machine cannot handle.
func (c *Config) Validate() error {
	b := c.Button
	if b.TickInterval < time.Millisecond {
		return fmt.Errorf("button.tick_interval must be at least 1ms, got %v", b.TickInterval)
	}
	for name, d := range map[string]time.Duration{
		"press_debounce":   b.PressDebounce,
		"release_debounce": b.ReleaseDebounce,
		"long_press":       b.LongPress,
	} {
		if d < 0 {
			return fmt.Errorf("button.%s must not be negative, got %v", name, d)
		}
	}
	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative, got %v", c.MQTT.Heartbeat)
	}
	switch gpio.Bias(c.GPIO.Bias) {
	case gpio.BiasPullUp, gpio.BiasPullDown, gpio.BiasDisabled:
	default:
		return fmt.Errorf("gpio.bias must be pull-up, pull-down or disabled, got %q", c.GPIO.Bias)
	}
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	return nil
}

// Millis converts d to whole milliseconds for the tick-based primitives.
func Millis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}
