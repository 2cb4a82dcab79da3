// Package config provides the small typed configuration layer for
// connection tunables, grounded on WuKongIM-WuKongIM's direct
// github.com/spf13/viper usage.
package config

import (
	"time"

	"github.com/spf13/viper"

	"framewire/rpcerr"
)

// Connection holds the tunables a framewire connection reads at
// construction time.
type Connection struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration
	PendingTableHint  int // initial map size hint for pending.Table
	ProtocolVersion   string
}

// Default returns the built-in tunables, used whenever no override
// source is configured.
func Default() Connection {
	return Connection{
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		PendingTableHint:  64,
		ProtocolVersion:   "framewire/1",
	}
}

// Load reads overrides from environment variables prefixed FRAMEWIRE_
// and, if present, a config file at path (any format viper supports:
// yaml, json, toml). Missing file/env values fall back to Default().
func Load(path string) (Connection, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("FRAMEWIRE")
	v.AutomaticEnv()
	v.SetDefault("read_timeout", cfg.ReadTimeout)
	v.SetDefault("write_timeout", cfg.WriteTimeout)
	v.SetDefault("heartbeat_interval", cfg.HeartbeatInterval)
	v.SetDefault("pending_table_hint", cfg.PendingTableHint)
	v.SetDefault("protocol_version", cfg.ProtocolVersion)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, rpcerr.Wrapf(err, "config: reading %s", path)
		}
	}

	cfg.ReadTimeout = v.GetDuration("read_timeout")
	cfg.WriteTimeout = v.GetDuration("write_timeout")
	cfg.HeartbeatInterval = v.GetDuration("heartbeat_interval")
	cfg.PendingTableHint = v.GetInt("pending_table_hint")
	cfg.ProtocolVersion = v.GetString("protocol_version")

	return cfg, nil
}
