package format

import "strings"

// Config represents formatting configuration options
type Config struct {
	IndentSize int  `mapstructure:"indent_size" yaml:"indent_size"`
	UseTabs    bool `mapstructure:"use_tabs" yaml:"use_tabs"`
}

// DefaultConfig returns the default formatting configuration
func DefaultConfig() *Config {
	return &Config{
		IndentSize: 4,
		UseTabs:    false,
	}
}

// unit returns the text of one indentation level
func (c *Config) unit() string {
	if c.UseTabs {
		return "\t"
	}
	size := c.IndentSize
	if size <= 0 {
		size = DefaultConfig().IndentSize
	}
	return strings.Repeat(" ", size)
}
