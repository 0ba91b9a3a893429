package xltrack

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.alis.build/alog"
)

// Config is the file/env form of Options.
type Config struct {
	ExportPath string      `mapstructure:"export_path"`
	Resolver   string      `mapstructure:"resolver"` // "field" (default) or "expr"
	LogLevel   string      `mapstructure:"log_level"`
	Image      ImageConfig `mapstructure:"image"`
}

// ImageConfig holds image placement metrics in pixels.
type ImageConfig struct {
	InsetX  int `mapstructure:"inset_x"`
	InsetY  int `mapstructure:"inset_y"`
	OffsetX int `mapstructure:"offset_x"`
	OffsetY int `mapstructure:"offset_y"`
}

// DefaultConfig returns the configuration matching defaultOptions.
func DefaultConfig() Config {
	return Config{
		Resolver: "field",
		LogLevel: "info",
		Image: ImageConfig{
			InsetX:  defaultImageInsetX,
			InsetY:  defaultImageInsetY,
			OffsetX: defaultImageOffsetX,
			OffsetY: defaultImageOffsetY,
		},
	}
}

// LoadConfig reads a config file (any format viper understands) with
// XLTRACK_* environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("export_path", def.ExportPath)
	v.SetDefault("resolver", def.Resolver)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("image.inset_x", def.Image.InsetX)
	v.SetDefault("image.inset_y", def.Image.InsetY)
	v.SetDefault("image.offset_x", def.Image.OffsetX)
	v.SetDefault("image.offset_y", def.Image.OffsetY)

	v.SetEnvPrefix("XLTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Options converts the config into report options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithImageInset(c.Image.InsetX, c.Image.InsetY),
		WithImageOffset(c.Image.OffsetX, c.Image.OffsetY),
	}
	if c.ExportPath != "" {
		opts = append(opts, WithExportPath(c.ExportPath))
	}

	switch strings.ToLower(c.Resolver) {
	case "", "field":
		opts = append(opts, WithResolver(NewLookupResolver(FieldLookup)))
	case "expr":
		opts = append(opts, WithResolver(NewExprResolver()))
	default:
		return nil, fmt.Errorf("unknown resolver %q", c.Resolver)
	}

	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithLogLevel(level))
	return opts, nil
}

func parseLogLevel(s string) (alog.LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return alog.LevelDebug, nil
	case "", "info":
		return alog.LevelInfo, nil
	case "notice":
		return alog.LevelNotice, nil
	case "warn", "warning":
		return alog.LevelWarning, nil
	case "error":
		return alog.LevelError, nil
	}
	return alog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
