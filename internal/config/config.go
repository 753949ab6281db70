package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soypat/canard"
)

type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Interface string          `yaml:"interface"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

type NodeConfig struct {
	// ID is the local node-ID. Nil or any value above 127 means anonymous.
	ID  *int `yaml:"id"`
	MTU int  `yaml:"mtu"`
}

type HeartbeatConfig struct {
	Enable   bool          `yaml:"enable"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Node.MTU == 0 {
		cfg.Node.MTU = canard.MTU_CAN_CLASSIC
	}
	if cfg.Interface == "" {
		cfg.Interface = "can0"
	}
	if cfg.Heartbeat.Interval <= 0 {
		cfg.Heartbeat.Interval = 1 * time.Second
	}
}

func (cfg *Config) Validate() error {
	if cfg.Node.ID != nil && (*cfg.Node.ID < 0 || *cfg.Node.ID > 255) {
		return fmt.Errorf("node.id must be in 0..255, got %d", *cfg.Node.ID)
	}
	if cfg.Node.MTU < canard.MTU_CAN_CLASSIC || cfg.Node.MTU > canard.MTU_CAN_FD {
		return fmt.Errorf("node.mtu must be in %d..%d, got %d", canard.MTU_CAN_CLASSIC, canard.MTU_CAN_FD, cfg.Node.MTU)
	}
	if l, _ := canard.RoundUpFrameLength(cfg.Node.MTU); l != cfg.Node.MTU {
		return fmt.Errorf("node.mtu %d is not a CAN FD data length, use %d", cfg.Node.MTU, l)
	}
	if cfg.Heartbeat.Enable && cfg.Node.ID == nil {
		return fmt.Errorf("heartbeat.enable requires node.id")
	}
	return nil
}

// NodeID returns the configured node-ID or canard.NodeIDUnset.
func (cfg *Config) NodeID() canard.NodeID {
	if cfg.Node.ID == nil {
		return canard.NodeIDUnset
	}
	return canard.NodeID(*cfg.Node.ID)
}

// Instance returns a protocol instance for the configured node.
func (cfg *Config) Instance() (*canard.Instance, error) {
	return canard.NewInstance(cfg.NodeID(), cfg.Node.MTU)
}
