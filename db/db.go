package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/recipeapi/config"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrations embed.FS

// Setup opens the configured database and verifies the connection.
func Setup(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.DBDriver {
	case config.DriverMySQL:
		connector, err := mysqlConnector(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sql.OpenDB(connector), mysqldialect.New())
	default:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	return db, nil
}

// mysqlConnector enforces parseTime and UTC so DATETIME columns scan into time.Time.
func mysqlConnector(dsn string) (driver.Connector, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse MYSQL_DSN: %w", err)
	}
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC
	return mysql.NewConnector(mcfg)
}

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// Migrate applies the embedded goose migrations for dialect.
// Down rolls back a single version.
func Migrate(ctx context.Context, db *bun.DB, dialect string, dir Direction, log *zap.Logger) error {
	sub, err := MigrationsFS(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(sub)
	goose.SetLogger(gooseLogger{log.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	switch dir {
	case Up:
		err = goose.UpContext(ctx, db.DB, ".")
	case Down:
		err = goose.DownContext(ctx, db.DB, ".")
	case Status:
		err = goose.StatusContext(ctx, db.DB, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

// MigrationsFS returns the migration files for dialect.
func MigrationsFS(dialect string) (fs.FS, error) {
	switch dialect {
	case config.DriverPostgres, config.DriverMySQL:
		return fs.Sub(migrations, "migrations/"+dialect)
	default:
		return nil, fmt.Errorf("no migrations for %q", dialect)
	}
}

type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatalf(format, v...)
}
