package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FarmConfig declares one reward adapter the daemon registers at startup.
// Kind selects a built-in adapter implementation.
type FarmConfig struct {
	Kind string `toml:"Kind"`
}

type Config struct {
	ListenAddress string       `toml:"ListenAddress"`
	DataDir       string       `toml:"DataDir"`
	Environment   string       `toml:"Environment"`
	RPCToken      string       `toml:"RPCToken"`
	PauseVault    bool         `toml:"PauseVault"`
	Farms         []FarmConfig `toml:"Farms"`
}

const (
	defaultListenAddress = "0.0.0.0:8645"
	defaultDataDir       = "./vaultdata"
)

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = defaultListenAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if c.Farms == nil {
		c.Farms = []FarmConfig{}
	}
}

var knownFarmKinds = map[string]struct{}{
	"null":    {},
	"blocked": {},
	"failing": {},
}

func (c *Config) validate() error {
	for i, farm := range c.Farms {
		kind := strings.TrimSpace(strings.ToLower(farm.Kind))
		if kind == "" {
			return fmt.Errorf("config: farm %d is missing a Kind", i)
		}
		if _, ok := knownFarmKinds[kind]; !ok {
			return fmt.Errorf("config: farm %d has unknown Kind %q", i, farm.Kind)
		}
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: defaultListenAddress,
		DataDir:       defaultDataDir,
		Farms:         []FarmConfig{{Kind: "null"}},
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
