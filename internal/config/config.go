// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device DeviceConfig `yaml:"device"`
	UDP    UDPConfig    `yaml:"udp"`
	Log    LogConfig    `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Wiring  string `yaml:"wiring"` // four_wire | three_wire
	PHY     string `yaml:"phy"`    // auto | 10_half | 10_full | 100_half | 100_full | 100_half_auto | power_down
	MAC     string `yaml:"mac"`
	IP      string `yaml:"ip"`
	Gateway string `yaml:"gateway"`
	Subnet  string `yaml:"subnet"`

	RetryTime  uint16 `yaml:"retry_time"` // 100µs units
	RetryCount uint8  `yaml:"retry_count"`
	PollLimit  int    `yaml:"poll_limit"`
}

// ---- UDP ----

type UDPConfig struct {
	Slot    int    `yaml:"slot"`
	Port    uint16 `yaml:"port"`
	Peer    string `yaml:"peer"` // ip:port
	Message string `yaml:"message"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Load reads a YAML file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes YAML bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
