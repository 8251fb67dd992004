package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Directories
	DataDir  string // input CSVs
	CacheDir string // cached HTML snapshots
	OutDir   string // output tables

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration in order of precedence: environment
// variables, .env file, config file (.gb2260.yaml), then defaults. Flags
// are bound on top by the commands themselves.
func LoadConfig() (*Config, error) {
	// .env before Viper env binding; missing files are fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GB2260")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("data_dir", "data")
	v.SetDefault("cache_dir", "data/cache")
	v.SetDefault("out_dir", "data")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "")

	v.SetConfigName(".gb2260")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the normal case.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		DataDir:   v.GetString("data_dir"),
		CacheDir:  v.GetString("cache_dir"),
		OutDir:    v.GetString("out_dir"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}, nil
}
