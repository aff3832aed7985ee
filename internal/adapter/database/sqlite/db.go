package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

//go:embed migrations/*.sql
var migrations embed.FS

const MemoryPath = ":memory:"

type Config struct {
	Path       string
	LogQueries bool
}

type DB struct {
	*sql.DB
	QueryBuilder sq.StatementBuilderType
}

// NewDB opens the database, applies the embedded migrations and wires
// tracing. Query logging goes to stdout through zerolog when enabled.
func NewDB(config Config) (*DB, error) {
	if config.Path == "" {
		config.Path = "database.db"
	}

	inMemory := strings.HasPrefix(config.Path, MemoryPath)
	dsn := config.Path + "?_foreign_keys=on&_busy_timeout=5000"

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("taskmanager"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if config.LogQueries {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

		logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
			sqldblogger.WithLogArguments(false),
		)

		_ = sqlDB.Close()
		sqlDB = logged
	}

	// Every connection to :memory: is a separate database.
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DB{
		DB:           sqlDB,
		QueryBuilder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

func RunMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
