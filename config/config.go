// Package config provides configuration for the signature intake gate.
package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm", "config")

// DefaultEngine is the native engine used when none is configured
const DefaultEngine = "go"

// Reference time keywords
const (
	// TimeNow uses the current time
	TimeNow = "now"
	// TimeNone disables creation and expiration checks
	TimeNone = "none"
)

// Config holds the configuration of the native library gate
type Config struct {
	// Engine is the registered native engine name
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// ConfigOverride is pushed as the native configuration override
	// at initialization. Relative paths are resolved against the
	// folder of the configuration file.
	ConfigOverride string `json:"config_override,omitempty" yaml:"config_override,omitempty"`

	// AllowWeakHashes is the default weak hash policy
	AllowWeakHashes bool `json:"allow_weak_hashes,omitempty" yaml:"allow_weak_hashes,omitempty"`

	// ReferenceTime is `now`, `none` or RFC3339 time
	ReferenceTime string `json:"reference_time,omitempty" yaml:"reference_time,omitempty"`
}

// EngineName returns the configured engine, or DefaultEngine
func (c *Config) EngineName() string {
	if c == nil || c.Engine == "" {
		return DefaultEngine
	}
	return c.Engine
}

// Load returns configuration loaded from a YAML or JSON file
func Load(filename string) (*Config, error) {
	cfr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer cfr.Close()

	cfg := new(Config)
	if strings.HasSuffix(filename, ".json") {
		err = json.NewDecoder(cfr).Decode(cfg)
	} else {
		err = yaml.NewDecoder(cfr).Decode(cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}

	if cfg.ConfigOverride != "" && !filepath.IsAbs(cfg.ConfigOverride) {
		cfg.ConfigOverride = filepath.Join(filepath.Dir(filename), cfg.ConfigOverride)
	}
	if _, err = ParseReferenceTime(cfg.ReferenceTime, time.Now()); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration: %s", filename)
	}

	logger.KV(xlog.DEBUG, "file", filename, "engine", cfg.EngineName(), "override", cfg.ConfigOverride)
	return cfg, nil
}

// ParseReferenceTime converts a reference time value to seconds since the epoch.
// Empty or `now` returns now, `none` returns zero.
func ParseReferenceTime(val string, now time.Time) (uint32, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "", TimeNow:
		return toUnix32(now)
	case TimeNone:
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return 0, errors.WithMessagef(err, "invalid reference time %q", val)
	}
	return toUnix32(t)
}

func toUnix32(t time.Time) (uint32, error) {
	sec := t.Unix()
	if sec <= 0 || sec > math.MaxUint32 {
		return 0, errors.Errorf("reference time out of range: %s", t.Format(time.RFC3339))
	}
	return uint32(sec), nil
}
