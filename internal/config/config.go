package config

import (
	"fmt"
	"os"
	"time"

	"assessment-engine/internal/app"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		Mode         string `yaml:"mode"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
		File string `yaml:"file"`
	} `yaml:"log"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL  string `yaml:"ttl"`
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Engine Engine `yaml:"engine"`
}

// Engine tunes session creation.
type Engine struct {
	DefaultQuestionCount int           `yaml:"default_question_count"`
	MaxQuestionCount     int           `yaml:"max_question_count"`
	Distribution         *Distribution `yaml:"distribution"`
}

// Distribution mirrors app.Distribution without importing it.
type Distribution struct {
	Beginner     float64 `yaml:"beginner"`
	Intermediate float64 `yaml:"intermediate"`
	Advanced     float64 `yaml:"advanced"`
}

// Load reads YAML config from path. A missing file yields defaults so the
// service can start with environment overrides alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot honor.
func (c Config) Validate() error {
	e := c.Engine
	if e.DefaultQuestionCount < 0 || e.MaxQuestionCount < 0 {
		return fmt.Errorf("engine: question counts must not be negative")
	}
	if def, limit := e.effectiveCounts(); def > limit {
		return fmt.Errorf("engine: default_question_count %d exceeds max_question_count %d", def, limit)
	}
	if d := e.Distribution; d != nil {
		if d.Beginner < 0 || d.Intermediate < 0 || d.Advanced < 0 {
			return fmt.Errorf("engine: distribution weights must not be negative")
		}
		if d.Beginner+d.Intermediate+d.Advanced == 0 {
			return fmt.Errorf("engine: distribution needs a positive weight")
		}
	}
	return nil
}

// effectiveCounts resolves unset question counts to the engine's built-in values.
func (e Engine) effectiveCounts() (def, limit int) {
	def, limit = e.DefaultQuestionCount, e.MaxQuestionCount
	if def == 0 {
		def = app.DefaultQuestionCount
	}
	if limit == 0 {
		limit = app.MaxQuestionCount
	}
	return def, limit
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
