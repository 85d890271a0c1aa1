// Package config merges command-line flags, INCLUDEFIX_* environment
// variables and an optional config file into one set of run options.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. INCLUDEFIX_SOURCE.
	EnvPrefix = "INCLUDEFIX"

	KeyIncludes  = "includes"
	KeySource    = "source"
	KeyOutput    = "output"
	KeyVerbose   = "verbose"
	KeyHeaderExt = "header-ext"
	KeyTieBreak  = "tie-break"
	KeyDryRun    = "dry-run"
	KeyFormat    = "format"
	KeyConfig    = "config"
)

// Config holds the resolved options of one invocation.
type Config struct {
	IncludeRoots     []string
	Source           string
	Output           string
	Verbose          bool
	HeaderExtensions []string
	TieBreak         string
	DryRun           bool
	Format           string
	// File is the config file that was read, if any.
	File string
}

// Load resolves options with precedence flag > environment > config file > flag default.
// The config file is named by the --config flag or INCLUDEFIX_CONFIG.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		cfg.File = v.ConfigFileUsed()
	}

	cfg.IncludeRoots = listValue(v.Get(KeyIncludes), ";")
	cfg.Source = v.GetString(KeySource)
	cfg.Output = v.GetString(KeyOutput)
	cfg.Verbose = v.GetBool(KeyVerbose)
	cfg.HeaderExtensions = listValue(v.Get(KeyHeaderExt), ",")
	cfg.TieBreak = v.GetString(KeyTieBreak)
	cfg.DryRun = v.GetBool(KeyDryRun)
	cfg.Format = v.GetString(KeyFormat)
	return cfg, nil
}

// Missing names the required options that are empty.
func (c *Config) Missing(required ...string) []string {
	var missing []string
	for _, key := range required {
		switch key {
		case KeyIncludes:
			if len(c.IncludeRoots) == 0 {
				missing = append(missing, key)
			}
		case KeySource:
			if c.Source == "" {
				missing = append(missing, key)
			}
		case KeyOutput:
			if c.Output == "" {
				missing = append(missing, key)
			}
		}
	}
	return missing
}

// listValue flattens a string or list value, splitting strings on sep.
func listValue(raw any, sep string) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, sep)
	case []string:
		for _, item := range val {
			parts = append(parts, strings.Split(item, sep)...)
		}
	case []any:
		for _, item := range val {
			parts = append(parts, strings.Split(fmt.Sprint(item), sep)...)
		}
	default:
		parts = []string{fmt.Sprint(val)}
	}

	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AddPipelineFlags registers the options shared by every command that builds a header index.
func AddPipelineFlags(flags *pflag.FlagSet) {
	flags.StringP(KeyIncludes, "i", "", `Include directories separated by ";"`)
	flags.StringP(KeySource, "s", "", "Sources directory to be processed")
	flags.StringSlice(KeyHeaderExt, []string{".h"}, "Extensions catalogued as include targets (comma-separated)")
	flags.String(KeyTieBreak, "first", "Candidate choice for ambiguous headers: first, shortest or lexical")
}

// AddGlobalFlags registers the persistent options of the root command.
func AddGlobalFlags(flags *pflag.FlagSet) {
	flags.BoolP(KeyVerbose, "v", false, "Verbose actions")
	flags.String(KeyConfig, "", "Config file (TOML, YAML or JSON)")
}
