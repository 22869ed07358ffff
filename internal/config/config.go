package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Decode  DecodeConfig  `mapstructure:"decode"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`     // json or text
	Output     string `mapstructure:"output"`     // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"`   // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type DecodeConfig struct {
	Mode           string `mapstructure:"mode"`             // color or monochrome
	Flip           string `mapstructure:"flip"`             // rows or buffer
	SearchWindow   int64  `mapstructure:"search_window"`    // bytes searched for the first frame
	ReadChunk      int    `mapstructure:"read_chunk"`       // offsets tested per read while scanning
	MaxCaptureSize int64  `mapstructure:"max_capture_size"` // 0 disables the check
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Audio  bool   `mapstructure:"audio"`  // raw unsigned 8-bit samples
	Frames bool   `mapstructure:"frames"` // raw RGB24 image per frame
	Index  bool   `mapstructure:"index"`  // JSON frame index
}

type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"` // node exporter textfile collector path
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from configPath, if set, layered over defaults
// and RINGVIDEO_* environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable override
	v.SetEnvPrefix("RINGVIDEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Decode defaults
	v.SetDefault("decode.mode", "color")
	v.SetDefault("decode.flip", "rows")
	v.SetDefault("decode.search_window", 19760)
	v.SetDefault("decode.read_chunk", 65536)
	v.SetDefault("decode.max_capture_size", 635040000)

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.audio", true)
	v.SetDefault("output.frames", true)
	v.SetDefault("output.index", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "")

	// Frame index cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "720h")
	v.SetDefault("cache.prefix", "ringvideo:index:")
	v.SetDefault("cache.timeout", "3s")
}
