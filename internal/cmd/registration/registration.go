// Package registration parses registration command flags and composes the
// service entrypoint.
package registration

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/rawcn/internal/platform/cmd"
	"github.com/louisbranch/rawcn/internal/services/registration/account"
	server "github.com/louisbranch/rawcn/internal/services/registration/app"
	"go.uber.org/zap"
)

// Config holds registration command configuration.
type Config struct {
	Port     int    `env:"RAWCN_REGISTRATION_PORT"      envDefault:"8090"`
	HTTPAddr string `env:"RAWCN_REGISTRATION_HTTP_ADDR" envDefault:"localhost:8091"`
	DBPath   string `env:"RAWCN_REGISTRATION_DB_PATH"   envDefault:"data/registration.db"`
	LogLevel string `env:"RAWCN_LOG_LEVEL"              envDefault:"info"`

	Auth   account.Config
	Images server.ImageHostConfig
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "registration gRPC server port")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "registration HTTP listen address; empty disables HTTP")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "registration SQLite database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Images.CloudName, "cloudinary-cloud", cfg.Images.CloudName, "Cloudinary cloud name; empty disables image upload")
	fs.StringVar(&cfg.Images.UploadPreset, "upload-preset", cfg.Images.UploadPreset, "Cloudinary unsigned upload preset")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the registration server.
func Run(ctx context.Context, cfg Config) error {
	logger, err := entrypoint.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceRegistration, options, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			Port:     cfg.Port,
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
			Auth:     cfg.Auth,
			Images:   cfg.Images,
			Logger:   logger.With(zap.String("service", entrypoint.ServiceRegistration)),
		}); err != nil {
			return fmt.Errorf("serve registration: %w", err)
		}
		return nil
	})
}
