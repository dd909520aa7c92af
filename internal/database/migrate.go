package database

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations aplica las migraciones pendientes al arrancar
func (p *PostgresDB) RunMigrations(logger *zap.Logger) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(p.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(p.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	logger.Info("✅ Migraciones aplicadas", zap.Int64("version", version))
	return nil
}
