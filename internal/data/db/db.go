package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/novo-contact-backend/internal/pkg/envutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

const defaultDatabaseURL = "sqlite://app.db"

type Service struct {
	db      *gorm.DB
	log     *logger.Logger
	dialect string
}

// NewService opens the database named by DATABASE_URL. "sqlite://<path>" or
// a bare *.db path selects SQLite; "postgres://" DSNs select Postgres. With
// DATABASE_URL unset but POSTGRES_HOST set, a DSN is assembled from the
// POSTGRES_* variables.
func NewService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	dsn := envutil.GetEnv("DATABASE_URL", "", logg)
	if dsn == "" {
		if host := envutil.GetEnv("POSTGRES_HOST", "", logg); host != "" {
			dsn = fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s?sslmode=disable",
				envutil.GetEnv("POSTGRES_USER", "postgres", logg),
				envutil.GetEnv("POSTGRES_PASSWORD", "", logg),
				host,
				envutil.GetEnv("POSTGRES_PORT", "5432", logg),
				envutil.GetEnv("POSTGRES_NAME", "novo", logg),
			)
		} else {
			dsn = defaultDatabaseURL
		}
	}

	dialector, dialect, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// Dialog messages rely on ON DELETE CASCADE.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	serviceLog.Info("Database connected", "dialect", dialect)
	return &Service{db: db, log: serviceLog, dialect: dialect}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres", nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), "sqlite", nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), dsn == ":memory:":
		return sqlite.Open(dsn), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("unsupported DATABASE_URL %q", dsn)
	}
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Dialect() string { return s.dialect }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
