// Package config CLI默认配置
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix  = "GDALREF_"
	EnvConfig  = EnvPrefix + "CONFIG"
	unfiltered = -1.0
)

var (
	ErrInvalidStation   = errors.New("station must be positive")
	ErrInvalidEpsilon   = errors.New("epsilon must be -1 or non-negative")
	ErrInvalidOutputExt = errors.New("output_ext must be one of .gpkg .shp .geojson .csv")
)

var outputExts = map[string]bool{".gpkg": true, ".shp": true, ".geojson": true, ".csv": true}

type Config struct {
	// debug/info/warn/error
	LogLevel string `koanf:"log_level"`

	// 默认垂距阈值，-1不过滤
	Epsilon      float64 `koanf:"epsilon"`
	Consolidate  bool    `koanf:"consolidate"`
	Station      float64 `koanf:"station"`
	EventIDField string  `koanf:"event_id_field"`
	CommentField string  `koanf:"comment_field"`

	// 未指定输出时在此创建唯一运行目录
	WorkDir   string `koanf:"work_dir"`
	OutputExt string `koanf:"output_ext"`
}

func New() *Config {
	return &Config{
		LogLevel:     "info",
		Epsilon:      unfiltered,
		Consolidate:  true,
		Station:      100,
		EventIDField: "GUID",
		CommentField: "comment",
		WorkDir:      os.TempDir(),
		OutputExt:    ".gpkg",
	}
}

// 依次加载默认值、path（为空时取$GDALREF_CONFIG）处的YAML文件、GDALREF_*环境变量
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}
	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Station <= 0 {
		return ErrInvalidStation
	}
	if c.Epsilon < 0 && c.Epsilon != unfiltered {
		return ErrInvalidEpsilon
	}
	c.OutputExt = strings.ToLower(c.OutputExt)
	if !strings.HasPrefix(c.OutputExt, ".") {
		c.OutputExt = "." + c.OutputExt
	}
	if !outputExts[c.OutputExt] {
		return ErrInvalidOutputExt
	}
	return nil
}
