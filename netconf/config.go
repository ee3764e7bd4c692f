// Package netconf holds the tunable Configuration spec.md §4.9 names and
// the §6.2 XML loader that populates it from a host-provided virtual
// filesystem. Grounded on debnConfiguration.cpp/debnLoadConfiguration.cpp;
// validation-tag idiom borrowed from the teacher's config/database/gorm
// Config.Validate style.
package netconf

import (
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-version"

	"github.com/nabbar/netlink-sync/conn"
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/nlog"
)

// LogLevel is the §4.9 logLevel enum.
type LogLevel string

const (
	LogError   LogLevel = "error"
	LogWarning LogLevel = "warning"
	LogInfo    LogLevel = "info"
	LogDebug   LogLevel = "debug"
)

// HCLogLevel translates LogLevel to the hclog.Level nlog.New expects
// (SPEC_FULL §D.2: "config logLevel actually wired to nlog").
func (l LogLevel) HCLogLevel() hclog.Level {
	switch l {
	case LogError:
		return hclog.Error
	case LogWarning:
		return hclog.Warn
	case LogInfo:
		return hclog.Info
	case LogDebug:
		return hclog.Debug
	default:
		return hclog.Warn
	}
}

// Configuration holds spec.md §4.9's tunables. Field tags express the
// 0.01s lower clamp via go-playground/validator; Validate clamps
// out-of-range values up rather than rejecting the whole file, matching
// §6.2's forgiving-parse stance ("unknown tags/properties warn and are
// ignored").
type Configuration struct {
	LogLevel               LogLevel `xml:"-"`
	ConnectResendInterval  float64  `validate:"min=0.01"`
	ConnectTimeout         float64  `validate:"min=0.01"`
	ReliableResendInterval float64  `validate:"min=0.01"`
	ReliableTimeout        float64  `validate:"min=0.01"`

	// ReliableMaxRetries is not part of the wire-visible config file
	// format (§6.2 lists only the five properties) but is carried here
	// so a host that builds Configuration programmatically has one
	// place to set every conn.Config field (spec.md §9 open question 2).
	ReliableMaxRetries int

	// ProtocolVersion is the negotiated wire protocol, exposed as a
	// parsed version so a future V2 (§9) can be compared against it
	// without changing the uint16 wire representation.
	ProtocolVersion *version.Version
}

const defaultProtocolVersion = "1.0.0"

// Default returns spec.md §4.9's defaults.
func Default() Configuration {
	v, _ := version.NewVersion(defaultProtocolVersion)
	return Configuration{
		LogLevel:               LogWarning,
		ConnectResendInterval:  1,
		ConnectTimeout:         5,
		ReliableResendInterval: 0.5,
		ReliableTimeout:        3,
		ReliableMaxRetries:     0,
		ProtocolVersion:        v,
	}
}

// minInterval is the §4.9 lower clamp applied to every interval/timeout
// field, independent of the validator tag (used by Validate's rewrite path).
const minInterval = 0.01

// Validate clamps any field below minInterval up to it, replaces a nil
// ProtocolVersion with the default, then runs the validator, returning a
// *nlerr.Error of KindParseError only if validation still fails (never
// happens for the clamped float64 fields; kept to surface validator's own
// structural errors).
func (c *Configuration) Validate() error {
	clamp := func(f *float64) {
		if *f < minInterval {
			*f = minInterval
		}
	}
	clamp(&c.ConnectResendInterval)
	clamp(&c.ConnectTimeout)
	clamp(&c.ReliableResendInterval)
	clamp(&c.ReliableTimeout)

	if c.ProtocolVersion == nil {
		v, _ := version.NewVersion(defaultProtocolVersion)
		c.ProtocolVersion = v
	}

	if err := validator.New().Struct(c); err != nil {
		return nlerr.Wrap(nlerr.KindParseError, err, "configuration failed validation after clamping")
	}
	return nil
}

// Logger builds the named nlog.Logger a Dispatcher or Server should be
// constructed with, at this Configuration's LogLevel (SPEC_FULL §D.2).
func (c Configuration) Logger(name string) nlog.Logger {
	return nlog.New(name, c.LogLevel.HCLogLevel())
}

// ConnConfig resolves this Configuration down to the subset conn.Connection
// actually consumes (conn.Config), per DESIGN.md's module-layout note.
func (c Configuration) ConnConfig() conn.Config {
	return conn.Config{
		ConnectResendInterval:  c.ConnectResendInterval,
		ConnectTimeout:         c.ConnectTimeout,
		ReliableResendInterval: c.ReliableResendInterval,
		ReliableTimeout:        c.ReliableTimeout,
		ReliableMaxRetries:     c.ReliableMaxRetries,
		WindowSize:             10,
	}
}
