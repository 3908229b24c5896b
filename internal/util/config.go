package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Journal       bool `toml:"journal"`
	JournalLength int  `toml:"journal-length"`

	EnableAll   bool `toml:"enable-all"`
	EnableStr   bool `toml:"enable-str"`
	EnableFs    bool `toml:"enable-fs"`
	EnableScope bool `toml:"enable-scope"`
	EnableDb    bool `toml:"enable-db"`
	Sandbox     bool `toml:"sandbox"`
}

// LoadFile overlays settings from a TOML file onto the configuration.
func (c *Configuration) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to load config '%s': %w", path, err)
	}
	return nil
}
