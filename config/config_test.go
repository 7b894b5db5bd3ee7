// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/scheduler"
)

func writeProfile(t *testing.T, text string) (path string) {
	path = filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return
}

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	assert.Equal(link.ModeNone, cfg.Link.Mode)
	assert.Equal(1000, cfg.Script.ResponseTimeoutMs)
	assert.NoError(cfg.Validate())
	assert.Equal(scheduler.DEFAULT_RESPONSE_TIMEOUT, cfg.Scheduler().ResponseTimeout)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := writeProfile(t, `
verbose = true

[link]
mode = "tcp-client"

[link.tcp_client]
host = "127.0.0.1"
port = 5000

[script]
path = "bench.star"
watch = true
response_timeout_ms = 250
max_steps = 100000
`)

	cfg, err := Load(path)
	require.NoError(err)
	require.NoError(cfg.Validate())

	assert.True(cfg.Verbose)
	assert.Equal(link.ModeTcpClient, cfg.Link.Mode)
	assert.Equal("127.0.0.1", cfg.Link.TcpClient.Host)
	assert.Equal(5000, cfg.Link.TcpClient.Port)

	// Untouched sections keep their defaults.
	assert.Equal(link.DEFAULT_BAUD_RATE, cfg.Link.Serial.BaudRate)

	sc := cfg.Scheduler()
	assert.Equal("bench.star", sc.Name)
	assert.Equal(250*time.Millisecond, sc.ResponseTimeout)
	assert.Equal(uint64(100000), sc.MaxSteps)
}

func TestLoad_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	var loadErr *ErrLoad
	assert.True(errors.As(err, &loadErr))

	_, err = Load(writeProfile(t, `[link]
mode = "carrier-pigeon"
`))
	assert.True(errors.As(err, &loadErr))
	assert.Contains(err.Error(), link.ErrModeInvalid.Error())

	_, err = Load(writeProfile(t, `[link]
baud = 9600
`))
	var unknownErr *ErrUnknownKey
	assert.True(errors.As(err, &unknownErr))
	assert.Equal("link.baud", unknownErr.Key)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	cfg.Script.ResponseTimeoutMs = -1
	assert.ErrorIs(cfg.Validate(), ErrResponseTimeoutInvalid)

	cfg = Default()
	cfg.Script.Watch = true
	assert.ErrorIs(cfg.Validate(), ErrWatchWithoutPath)

	cfg = Default()
	cfg.Link.Mode = link.ModeSerial
	var missingErr *link.ErrConfigMissing
	assert.True(errors.As(cfg.Validate(), &missingErr))

	cfg.Link.Serial.Port = "/dev/ttyUSB0"
	cfg.Link.Serial.Parity = "sideways"
	assert.ErrorIs(cfg.Validate(), link.ErrParityInvalid)
}
