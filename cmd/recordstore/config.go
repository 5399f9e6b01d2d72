package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the demo CLI's configuration, loaded via viper the same way
// the teacher's internal/config.go loads NovaSqlConfig: SetConfigFile,
// SetConfigType("yaml"), ReadInConfig, Unmarshal. Unlike the teacher's
// config (mandatory, server-wide), this one is entirely optional — the
// core library underneath never reads configuration itself (spec
// section 6: "no CLI, no environment variables... at this layer"), so a
// missing or absent config file just falls back to defaultConfig().
type Config struct {
	DataDir      string `mapstructure:"data_dir"`
	DataFile     string `mapstructure:"data_file"`
	PoolCapacity int    `mapstructure:"pool_capacity"`
	PageSize     int    `mapstructure:"page_size"`
	RecordSize   int    `mapstructure:"record_size"`
	SlotsPerPage int    `mapstructure:"slots_per_page"`
	HistoryPath  string `mapstructure:"history_path"`
}

func defaultConfig() Config {
	return Config{
		DataDir:      ".",
		DataFile:     "recordstore.db",
		PoolCapacity: 32,
		PageSize:     4096,
		RecordSize:   64,
		SlotsPerPage: 50,
		HistoryPath:  defaultHistoryPath(),
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".recordstore_history"
	}
	return filepath.Join(home, ".recordstore_history")
}
