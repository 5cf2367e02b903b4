// Package config loads hellograph settings from flags, environment and an
// optional config file.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	schema "github.com/hanpama/hellograph/internal/schema"
)

// EnvPrefix prefixes environment overrides, e.g. HELLOGRAPH_SERVER_ADDR.
const EnvPrefix = "HELLOGRAPH"

type Config struct {
	GraphQL GraphQL `mapstructure:"graphql"`
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
	Metrics Metrics `mapstructure:"metrics"`
	Otel    Otel    `mapstructure:"otel"`
}

type GraphQL struct {
	App string `mapstructure:"app" validate:"required,app"`
}

type Server struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	Path         string        `mapstructure:"path" validate:"required,startswith=/"`
	Pretty       bool          `mapstructure:"pretty"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxBodyBytes int64         `mapstructure:"max-body-bytes" validate:"gte=0"`
	CORSOrigins  []string      `mapstructure:"cors-origin"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

type Otel struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Service  string `mapstructure:"service" validate:"required"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		GraphQL: GraphQL{App: "app1"},
		Server: Server{
			Addr:         ":4004",
			Path:         "/graphql",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Log:     Log{Level: "info", Format: "console"},
		Metrics: Metrics{Path: "/metrics"},
		Otel:    Otel{Service: "hellograph"},
	}
}

// AppFlags registers the flags shared by every command that needs a schema.
func AppFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("graphql.app", d.GraphQL.App, "Schema to serve, one of: "+strings.Join(schema.Names(), ", "))
}

// LogFlags registers logging flags.
func LogFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log.level", d.Log.Level, "Log level: debug, info, warn, error")
	fs.String("log.format", d.Log.Format, "Log encoding: console or json")
	fs.String("log.file", d.Log.File, "Write logs to this file with size-based rotation")
}

// ServeFlags registers the HTTP, metrics and tracing flags of the serve command.
func ServeFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("server.addr", d.Server.Addr, "HTTP listen address")
	fs.String("server.path", d.Server.Path, "GraphQL endpoint path")
	fs.Bool("server.pretty", d.Server.Pretty, "Pretty-print JSON responses")
	fs.Duration("server.timeout", d.Server.Timeout, "Default per-request timeout")
	fs.Int64("server.max-body-bytes", d.Server.MaxBodyBytes, "Maximum decoded request body size, 0 for unlimited")
	fs.StringSlice("server.cors-origin", nil, "Allowed CORS origin. Repeatable; * allows any")
	fs.Bool("metrics.enabled", d.Metrics.Enabled, "Expose prometheus metrics")
	fs.String("metrics.path", d.Metrics.Path, "Metrics endpoint path")
	fs.String("otel.endpoint", d.Otel.Endpoint, "OTLP/gRPC collector endpoint")
	fs.String("otel.service", d.Otel.Service, "OpenTelemetry service name")
}

// NewViper returns a viper instance bound to fs and the HELLOGRAPH_ environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, Default())
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("graphql.app", d.GraphQL.App)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.path", d.Server.Path)
	v.SetDefault("server.pretty", d.Server.Pretty)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("server.max-body-bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.cors-origin", []string{})
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("otel.endpoint", d.Otel.Endpoint)
	v.SetDefault("otel.service", d.Otel.Service)
}

// Load reads the optional config file and decodes v into a validated Config.
// Flags override environment variables, which override the file.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("app", func(fl validator.FieldLevel) bool {
		_, ok := schema.Lookup(fl.Field().String())
		return ok
	})
}

// Validate checks c against its struct tags.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validating config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "app":
		return fmt.Sprintf("%s: unknown app %q (have %s)", key, fe.Value(), strings.Join(schema.Names(), ", "))
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of %s", key, fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be >= %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s %s", key, fe.Tag(), fe.Param())
	}
}
