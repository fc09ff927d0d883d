package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mintgate/mediavault/internal/db"
	"github.com/mintgate/mediavault/internal/server"
	"github.com/mintgate/mediavault/internal/version"
)

func main() {
	setupLogger()

	// .env is optional, real deployments use the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var configFile string

	rootCmd := &cobra.Command{
		Use:     "mediavault",
		Short:   "MediaVault ingestion server",
		Version: version.Detailed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			sqliteDB, err := db.NewSqliteDB(db.WithPath(config.DBPath))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer sqliteDB.Close()

			srv, err := server.New(config, sqliteDB)
			if err != nil {
				return err
			}

			defer slog.Info("Bye!")
			return srv.Start(cmd.Context())
		},
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the config file")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("exited with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(configFile string) (*server.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/mediavault")
		viper.SetConfigName("mediavault")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("http.addr", server.DefaultAddr)
	viper.SetDefault("http.rate_limit", server.DefaultRateLimit)
	viper.SetDefault("db_path", "mediavault.db")
	viper.SetDefault("store.region", "us-east-1")
	viper.SetDefault("uploads.session_ttl", "1h")
	viper.SetDefault("uploads.sweep_interval", "10m")
	viper.SetDefault("uploads.preview_max_bytes", 4<<20)
	viper.SetDefault("uploads.max_parts", 10000)

	viper.SetEnvPrefix("MEDIAVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	} else {
		slog.Info("config loaded", "path", viper.ConfigFileUsed())
	}

	var config server.Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config invalid: %w", err)
	}

	return &config, nil
}
