package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"name-matcher/internal/utils"
)

type Config struct {
	Host           string
	Port           int
	AllowOrigins   []string
	LogLevel       string
	LogFile        string
	MaxUploadMB    int
	RateLimitRPS   float64 // 0 disables the limiter
	RateLimitBurst int
	Matching       MatchDefaults
}

// MatchDefaults prefill the form and the CLI flags.
type MatchDefaults struct {
	LeftName  string
	LeftID    string
	RightName string
	RightID   string
	Threshold float64
}

// Load reads .env (if any), then namematch.yaml from . or ./config (if any),
// then the environment. Environment wins.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("namematch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	th, ok := utils.ParseDecimal(v.GetString("default_threshold"))
	if !ok {
		return Config{}, fmt.Errorf("invalid DEFAULT_THRESHOLD %q", v.GetString("default_threshold"))
	}
	rps, ok := utils.ParseDecimal(v.GetString("rate_limit_rps"))
	if !ok {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v.GetString("rate_limit_rps"))
	}

	cfg := Config{
		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		AllowOrigins:   stringList(v, "allow_origins"),
		LogLevel:       v.GetString("log_level"),
		LogFile:        v.GetString("log_file"),
		MaxUploadMB:    v.GetInt("max_upload_mb"),
		RateLimitRPS:   rps,
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		Matching: MatchDefaults{
			LeftName:  strings.TrimSpace(v.GetString("left_name_column")),
			LeftID:    strings.TrimSpace(v.GetString("left_id_column")),
			RightName: strings.TrimSpace(v.GetString("right_name_column")),
			RightID:   strings.TrimSpace(v.GetString("right_id_column")),
			Threshold: th,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/name-matcher.log")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("rate_limit_rps", "5")
	v.SetDefault("rate_limit_burst", 10)

	v.SetDefault("default_threshold", "0.8")
	v.SetDefault("left_name_column", "Contacto Nombre")
	v.SetDefault("left_id_column", "Caso #")
	v.SetDefault("right_name_column", "Cli Nombre")
	v.SetDefault("right_id_column", "Fic Numero")
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be within 1..65535, got %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if t := c.Matching.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("DEFAULT_THRESHOLD must be within [0, 1], got %v", t)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

// stringList accepts both a YAML list and a comma-separated env value.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch x := v.Get(key).(type) {
	case string:
		raw = strings.Split(x, ",")
	default:
		raw = v.GetStringSlice(key)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
