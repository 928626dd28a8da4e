package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/database"
	"github.com/noah-isme/sma-gradebook-api/pkg/logger"
)

// flagKeys maps connection flags to the environment keys they override.
var flagKeys = map[string]string{
	"db-host":     "DB_HOST",
	"db-port":     "DB_PORT",
	"db-user":     "DB_USER",
	"db-password": "DB_PASSWORD",
	"db-name":     "DB_NAME",
	"db-ssl-mode": "DB_SSL_MODE",
	"log-level":   "LOG_LEVEL",
}

func addConnectionFlags(f *pflag.FlagSet) {
	f.String("db-host", "", "PostgreSQL host (or DB_HOST)")
	f.Int("db-port", 0, "PostgreSQL port (or DB_PORT)")
	f.String("db-user", "", "PostgreSQL user (or DB_USER)")
	f.String("db-password", "", "PostgreSQL password (or DB_PASSWORD)")
	f.String("db-name", "", "PostgreSQL database (or DB_NAME)")
	f.String("db-ssl-mode", "", "PostgreSQL sslmode (or DB_SSL_MODE)")
	f.String("log-level", "", "Log level (or LOG_LEVEL)")
}

// loadConfig layers explicitly set flags over the environment and .env file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	cfg := config.FromViper(v)
	if cfg.Log.Format == "" || cfg.Log.Format == "json" {
		cfg.Log.Format = "console"
	}
	return cfg, nil
}

type session struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *sqlx.DB
	gradebook *service.GradebookService
	exporter  *service.ExportService
}

func (r *session) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
	_ = r.logger.Sync()
}

// openRuntime connects to the database and builds the services the commands
// share. The CLI always reads straight from the database.
func openRuntime(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		_ = logr.Sync()
		return nil, err
	}
	gradebook := service.NewGradebookService(
		repository.NewStudentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewGradeRepository(db),
		nil, nil,
		service.GradebookConfig{DefaultTitle: cfg.Reports.Title},
		logr,
	)
	exporter := service.NewExportService(nil, nil, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr, nil, nil)
	return &session{cfg: cfg, logger: logr, db: db, gradebook: gradebook, exporter: exporter}, nil
}
