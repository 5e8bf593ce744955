// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// defaultExts matches what the gallery page can actually render: common
// video containers plus browser-displayable image formats
var defaultExts = []string{"mp4", "avi", "mov", "wmv", "flv", "webm", "jpg", "jpeg", "png", "gif"}

// Config holds everything the handlers need. It's built once during
// Setup and passed around explicitly instead of living in globals
type Config struct {
	LogLevel string
	Port     int
	// CORSOrigins lists frontend origins allowed to call the API from
	// another host. Empty means the gallery is only used through the
	// page served at / and no CORS middleware is mounted
	CORSOrigins []string
	StorageDir  string
	// PublicPath is the URL prefix media files are served under
	PublicPath string
	// MaxUploadSize is in bytes after Setup ran
	MaxUploadSize int64
	// AllowedExts is a lowercase extension set, no leading dots
	AllowedExts map[string]struct{}
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("storage.dir", "storage_dir")
	v.BindEnv("storage.public_path", "storage_public_path")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_exts", "upload_allowed_exts")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{})

	v.SetDefault("storage.dir", "static/videos")
	v.SetDefault("storage.public_path", "/static/videos")

	v.SetDefault("upload.max_size", 100)
	v.SetDefault("upload.allowed_exts", defaultExts)

	if err := v.ReadInConfig(); err != nil {
		// The defaults are enough to run on, so a missing config.toml
		// isn't fatal here
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return nil, errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return nil, errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return nil, errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("storage.dir") == "" {
		return nil, errors.New("storage.dir can't be empty")
	}

	exts := v.GetStringSlice("upload.allowed_exts")
	if len(exts) == 0 {
		return nil, errors.New("upload.allowed_exts can't be empty")
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" {
			return nil, errors.New("upload.allowed_exts contains an empty entry")
		}

		allowed[e] = struct{}{}
	}

	return &Config{
		LogLevel:      v.GetString("app.log_level"),
		Port:          v.GetInt("host.port"),
		CORSOrigins:   v.GetStringSlice("host.cors_origins"),
		StorageDir:    v.GetString("storage.dir"),
		PublicPath:    strings.TrimSuffix(v.GetString("storage.public_path"), "/"),
		MaxUploadSize: v.GetInt64("upload.max_size") << 20,
		AllowedExts:   allowed,
	}, nil
}
