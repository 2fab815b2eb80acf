// Package config loads solver, benchmark and logging settings from an
// optional config file and TWOPHASE_* environment variables.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "TWOPHASE"

type Config struct {
	Solver SolverConfig `mapstructure:"solver"`
	Bench  BenchConfig  `mapstructure:"bench"`
	Log    LogConfig    `mapstructure:"log"`
}

type SolverConfig struct {
	Epsilon       float64 `mapstructure:"epsilon"        validate:"gt=0"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"gt=0"`
	Method        string  `mapstructure:"method"         validate:"oneof=two-phase big-m"`
	BigM          float64 `mapstructure:"big_m"          validate:"gt=0"`
	Bland         bool    `mapstructure:"bland"`
}

type BenchConfig struct {
	Sizes       []string `mapstructure:"sizes"       validate:"min=1,dive,required"`
	Repetitions int      `mapstructure:"repetitions" validate:"gt=0"`
	Workers     int      `mapstructure:"workers"     validate:"gt=0"`
	Seed        uint64   `mapstructure:"seed"`
	Total       int      `mapstructure:"total"       validate:"gt=0"`
	// Output is the JSON file to write; empty means stdout.
	Output string `mapstructure:"output"`
	// CSV, when set, also receives one row per execution.
	CSV string `mapstructure:"csv"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// File, when set, receives the log through a rotating writer.
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"    validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age"     validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solver.epsilon", 1e-9)
	v.SetDefault("solver.max_iterations", 10000)
	v.SetDefault("solver.method", "two-phase")
	v.SetDefault("solver.big_m", 1e6)
	v.SetDefault("solver.bland", false)

	v.SetDefault("bench.sizes", []string{"50x50", "60x60", "70x70", "80x80", "90x90", "100x100"})
	v.SetDefault("bench.repetitions", 10)
	v.SetDefault("bench.workers", 1)
	v.SetDefault("bench.seed", 42)
	v.SetDefault("bench.total", 100000)
	v.SetDefault("bench.output", "")
	v.SetDefault("bench.csv", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
}

// Load reads the configuration. path may be empty, in which case only the
// defaults and the environment are used; otherwise the file type follows
// its extension. Environment variables such as TWOPHASE_SOLVER_METHOD
// override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return &cfg, nil
}
