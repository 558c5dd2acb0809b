package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// LoadAgentConfig reads an agent configuration file. Files ending in .toml are decoded as TOML, anything else as YAML.
// Defaults are expanded and the result is validated.
func LoadAgentConfig(path string) (AgentCfg, error) {
	cfg := AgentCfg{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return AgentCfg{}, fmt.Errorf("load agent config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) != 0 {
			return AgentCfg{}, fmt.Errorf("load agent config: unknown key %s", undecoded[0].String())
		}
	} else {
		file, err := os.ReadFile(path)
		if err != nil {
			return AgentCfg{}, fmt.Errorf("load agent config: %w", err)
		}
		err = yaml.Unmarshal(file, &cfg)
		if err != nil {
			return AgentCfg{}, fmt.Errorf("load agent config %s: %w", path, err)
		}
	}
	ExpandAgentConfig(&cfg)
	if err := AgentConfigValidator(&cfg); err != nil {
		return AgentCfg{}, err
	}
	return cfg, nil
}
