// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads linkscript profiles.
//
// A profile is a TOML file:
//
//	verbose = false
//
//	[link]
//	mode = "tcp-client"
//
//	[link.tcp_client]
//	host = "192.168.1.20"
//	port = 5000
//
//	[script]
//	path = "bench.star"
//	watch = true
//	response_timeout_ms = 1000
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/scheduler"
	"github.com/ezrec/linkscript/script"
)

// Script settings.
type Script struct {
	Path              string `toml:"path"`                // Script file to run at start.
	Watch             bool   `toml:"watch"`               // Re-run the script when the file changes.
	ResponseTimeoutMs int    `toml:"response_timeout_ms"` // Initial awaitResponse timeout.
	MaxSteps          uint64 `toml:"max_steps"`           // Starlark step budget, 0 for unlimited.
}

// Config is a complete profile.
type Config struct {
	Verbose bool        `toml:"verbose"`
	Link    link.Config `toml:"link"`
	Script  Script      `toml:"script"`
}

// Default profile: no transport, default response timeout.
func Default() (cfg Config) {
	cfg = Config{
		Link: link.Config{
			Mode:      link.ModeNone,
			SendQueue: link.DEFAULT_SEND_QUEUE,
			Serial: link.SerialConfig{
				BaudRate: link.DEFAULT_BAUD_RATE,
				DataBits: link.DEFAULT_DATA_BITS,
				StopBits: "1",
				Parity:   "none",
			},
		},
		Script: Script{
			ResponseTimeoutMs: int(scheduler.DEFAULT_RESPONSE_TIMEOUT / time.Millisecond),
		},
	}

	return
}

// Load a profile from path, layered over Default.
func Load(path string) (cfg Config, err error) {
	cfg = Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}

	undecoded := meta.Undecoded()
	if len(undecoded) != 0 {
		err = &ErrLoad{Path: path, Err: &ErrUnknownKey{Key: undecoded[0].String()}}
		return
	}

	return
}

// Validate the profile.
func (cfg *Config) Validate() (err error) {
	if cfg.Script.ResponseTimeoutMs < 0 {
		err = ErrResponseTimeoutInvalid
		return
	}

	if cfg.Script.Watch && len(cfg.Script.Path) == 0 {
		err = ErrWatchWithoutPath
		return
	}

	err = cfg.Link.Validate(cfg.Link.Mode)
	return
}

// Scheduler configuration derived from the profile.
func (cfg *Config) Scheduler() scheduler.Config {
	return scheduler.Config{
		Name:            cfg.Script.Path,
		ResponseTimeout: script.Millis(cfg.Script.ResponseTimeoutMs),
		MaxSteps:        cfg.Script.MaxSteps,
	}
}
