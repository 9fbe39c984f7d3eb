package duckdb

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
)

// Config controls how a database is opened and how values are marshalled.
type Config struct {
	// Path of the database file. Empty or ":memory:" opens an in-memory database.
	Path string `mapstructure:"path"`
	// Options are passed to the engine as global configuration flags.
	Options map[string]string `mapstructure:"options"`
	// BigMath enables the default big integer math when no BigIntMath is set.
	BigMath bool `mapstructure:"big_math"`
	// NarrowInts infers INTEGER instead of BIGINT for untyped ints that fit.
	NarrowInts bool `mapstructure:"narrow_ints"`
	// ExpectedVersion, when set, must match the library version reported by the engine.
	ExpectedVersion string    `mapstructure:"expected_version"`
	Log             LogConfig `mapstructure:"log"`
	// ChunkRows is the number of rows an appender stages before handing them
	// to the engine. Zero means the engine's vector size.
	ChunkRows int `mapstructure:"chunk_rows"`

	BigIntMath BigIntMath         `mapstructure:"-"`
	Logger     logrus.FieldLogger `mapstructure:"-"`
	Metrics    *Metrics           `mapstructure:"-"`
}

// Option customizes a Config.
type Option func(*Config)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithBigIntMath injects the arithmetic used for integers beyond int64.
func WithBigIntMath(bm BigIntMath) Option {
	return func(c *Config) { c.BigIntMath = bm }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

func WithExpectedVersion(version string) Option {
	return func(c *Config) { c.ExpectedVersion = version }
}

func WithNarrowInts() Option {
	return func(c *Config) { c.NarrowInts = true }
}

func WithChunkRows(n int) Option {
	return func(c *Config) { c.ChunkRows = n }
}

// WithOption sets one engine configuration flag.
func WithOption(name, value string) Option {
	return func(c *Config) {
		if c.Options == nil {
			c.Options = map[string]string{}
		}
		c.Options[name] = value
	}
}

// ParseDSN splits a DSN of the form path?name=value&... into the database
// path and its configuration flags.
func ParseDSN(dsn string) (string, map[string]string, error) {
	path, rawQuery, _ := strings.Cut(dsn, "?")
	opts := map[string]string{}
	if rawQuery == "" {
		return path, opts, nil
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, getError(errParseDSN, err)
	}
	for k, v := range query {
		if len(v) == 0 {
			continue
		}
		opts[k] = v[0]
	}
	return path, opts, nil
}

// ConfigFromMap decodes a Config from generic settings, such as a parsed
// YAML or JSON document.
func ConfigFromMap(m map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("%s: invalid configuration: %w", errPrefix, err)
	}
	return cfg, nil
}

func (c *Config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.BigIntMath == nil && c.BigMath {
		c.BigIntMath = NewAPDMath(DefaultBigIntMathPrecision)
	}
}

func (c *Config) converter() *converter {
	return newConverter(c.BigIntMath, c.NarrowInts)
}
