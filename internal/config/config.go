// Package config loads wharfd's key=value configuration file, using
// github.com/horgh/config's ReadStringMap for parsing, generalized to also
// carry the slot/limit constants as keys with defaults. The server reads
// the identity fields, MOTD, PingTime and DeadTime from a Config. The
// length bounds, ChanMax, ClientMaxChans and MaxBufferedLine are loaded but
// not read: nick and channel checks use the constants in internal/names,
// and the Line Framer uses proto.MaxBufferedLine.
package config

import (
	"strconv"
	"time"

	horghconfig "github.com/horgh/config"
	"github.com/pkg/errors"
)

// Config holds a server's configuration.
type Config struct {
	ListenHost string
	ListenPort string
	ServerName string
	ServerInfo string
	Version    string
	Network    string
	MOTD       []string

	NickMinLength  int
	NickMaxLength  int
	ChanMinLength  int
	ChanMaxLength  int
	ChanMax        int
	ClientMaxChans int

	// MaxBufferedLine is loaded from max-buffered-line; the Line Framer does
	// not read it and is bounded by proto.MaxBufferedLine.
	MaxBufferedLine int

	// PingTime is how long a registered client may be idle before we send a
	// PING.
	PingTime time.Duration

	// DeadTime is how long a client may be idle (after a PING) before we
	// consider it dead and disconnect it.
	DeadTime time.Duration
}

var requiredKeys = []string{
	"listen-host",
	"listen-port",
	"server-name",
	"server-info",
	"version",
	"network",
}

// defaults holds the server configuration constants applied whenever the
// config file omits the key.
var defaults = Config{
	NickMinLength:   1,
	NickMaxLength:   9,
	ChanMinLength:   1,
	ChanMaxLength:   16,
	ChanMax:         8,
	ClientMaxChans:  10,
	MaxBufferedLine: 2048,
	PingTime:        2 * time.Minute,
	DeadTime:        4 * time.Minute,
}

// Load reads path and returns a populated Config, applying defaults for
// any optional numeric/duration keys the file omits.
func Load(path string) (*Config, error) {
	raw, err := horghconfig.ReadStringMap(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	for _, key := range requiredKeys {
		v, exists := raw[key]
		if !exists {
			return nil, errors.Errorf("missing required config key: %s", key)
		}
		if len(v) == 0 {
			return nil, errors.Errorf("config value is blank: %s", key)
		}
	}

	c := defaults
	c.ListenHost = raw["listen-host"]
	c.ListenPort = raw["listen-port"]
	c.ServerName = raw["server-name"]
	c.ServerInfo = raw["server-info"]
	c.Version = raw["version"]
	c.Network = raw["network"]

	if motd, exists := raw["motd"]; exists && len(motd) > 0 {
		c.MOTD = []string{motd}
	}

	if err := overrideInt(raw, "nick-min-length", &c.NickMinLength); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "nick-max-length", &c.NickMaxLength); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "chan-min-length", &c.ChanMinLength); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "chan-max-length", &c.ChanMaxLength); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "chan-max", &c.ChanMax); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "client-max-chans", &c.ClientMaxChans); err != nil {
		return nil, err
	}
	if err := overrideInt(raw, "max-buffered-line", &c.MaxBufferedLine); err != nil {
		return nil, err
	}

	if err := overrideDuration(raw, "ping-time", &c.PingTime); err != nil {
		return nil, err
	}
	if err := overrideDuration(raw, "dead-time", &c.DeadTime); err != nil {
		return nil, err
	}

	return &c, nil
}

func overrideInt(raw map[string]string, key string, dst *int) error {
	v, exists := raw[key]
	if !exists || len(v) == 0 {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "invalid integer for %s", key)
	}
	*dst = n
	return nil
}

func overrideDuration(raw map[string]string, key string, dst *time.Duration) error {
	v, exists := raw[key]
	if !exists || len(v) == 0 {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.Wrapf(err, "invalid duration for %s", key)
	}
	*dst = d
	return nil
}
