package validator

import (
	"github.com/erraggy/oaskit/oaserrors"
	"golang.org/x/text/language"
)

// Flag toggles optional validation behavior.
type Flag int

const (
	// FlagStrictFormats reports format violations as errors instead of warnings.
	FlagStrictFormats Flag = iota + 1
	// FlagRequestMode treats the value as a request body: present readOnly
	// properties are errors and required readOnly properties may be absent.
	FlagRequestMode
	// FlagResponseMode treats the value as a response body: present writeOnly
	// properties are errors and required writeOnly properties may be absent.
	FlagResponseMode
)

// CheckerMode says how a custom checker combines with the core checker of
// its keyword.
type CheckerMode int

const (
	// Supplement runs the custom checker before the core checker.
	// Supplements run in registration order.
	Supplement CheckerMode = iota
	// Override replaces the core checker.
	Override
)

// Option configures compilation.
type Option func(*config) error

type customChecker struct {
	mode    CheckerMode
	factory CheckerFactory
}

type config struct {
	fastFail bool
	flags    map[Flag]bool
	redact   bool
	lang     language.Tag
	custom   map[string][]customChecker
}

func defaultConfig() *config {
	return &config{
		flags:  make(map[Flag]bool),
		lang:   language.English,
		custom: make(map[string][]customChecker),
	}
}

// WithFastFail stops validation at the first error.
func WithFastFail(enabled bool) Option {
	return func(c *config) error {
		c.fastFail = enabled
		return nil
	}
}

// WithFlags enables flags.
func WithFlags(flags ...Flag) Option {
	return func(c *config) error {
		for _, f := range flags {
			if f < FlagStrictFormats || f > FlagResponseMode {
				return &oaserrors.ConfigError{Option: "WithFlags", Value: int(f), Message: "unknown flag"}
			}
			c.flags[f] = true
		}
		if c.flags[FlagRequestMode] && c.flags[FlagResponseMode] {
			return &oaserrors.ConfigError{Option: "WithFlags", Message: "request and response mode are mutually exclusive"}
		}
		return nil
	}
}

// WithRedactValues omits data values from messages and items. Use this when
// validating potentially sensitive data.
func WithRedactValues(enabled bool) Option {
	return func(c *config) error {
		c.redact = enabled
		return nil
	}
}

// WithLanguage selects the language of messages. Default: English.
func WithLanguage(tag language.Tag) Option {
	return func(c *config) error {
		c.lang = tag
		return nil
	}
}

// WithChecker registers a custom checker for keyword. The keyword may be a
// core keyword, an x-* extension or any other key.
func WithChecker(keyword string, mode CheckerMode, factory CheckerFactory) Option {
	return func(c *config) error {
		if keyword == "" {
			return &oaserrors.ConfigError{Option: "WithChecker", Message: "keyword cannot be empty"}
		}
		if factory == nil {
			return &oaserrors.ConfigError{Option: "WithChecker", Value: keyword, Message: "factory cannot be nil"}
		}
		if mode != Supplement && mode != Override {
			return &oaserrors.ConfigError{Option: "WithChecker", Value: int(mode), Message: "unknown checker mode"}
		}
		c.custom[keyword] = append(c.custom[keyword], customChecker{mode: mode, factory: factory})
		return nil
	}
}
