// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/spvdisasm/internal/grammar"
	"github.com/retroenv/spvdisasm/internal/options"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadCatalog loads the grammar document referenced by the program options
// and builds the catalog that drives the disassembler.
func LoadCatalog(opts options.Program) (*grammar.Catalog, error) {
	return grammar.LoadFile(opts.Grammar, grammar.DefaultConfig())
}
