package database

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"botsprinter/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured store. The handle is created once at
// startup and passed to repositories; there is no package-level connection.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, cfg.Name)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(cfg),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Second)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// One writer at a time; this also keeps ":memory:" on a single connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig, dbName string) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, dbName, cfg.Port)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, dbName)
		return mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, dbName)
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Driver)
	}
}

func sqliteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

func newGormLogger(cfg config.DatabaseConfig) logger.Interface {
	level := logger.Warn
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		level = logger.Silent
	case "error":
		level = logger.Error
	case "info":
		level = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "[GORM] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(cfg.SlowThreshold) * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// EnsureDatabaseExists creates the configured database on a server engine when
// it is missing. SQLite creates its file on open, so it is skipped.
func EnsureDatabaseExists(cfg config.DatabaseConfig) error {
	var bootstrap string
	switch cfg.Driver {
	case "sqlite":
		return nil
	case "postgres":
		bootstrap = "postgres"
	case "mysql":
		bootstrap = ""
	case "mssql":
		bootstrap = "master"
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Driver)
	}

	if !isValidDBName(cfg.Name) {
		return fmt.Errorf("invalid database name %q", cfg.Name)
	}

	dialector, err := dialectorFor(cfg, bootstrap)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("connect to DB server: %w", err)
	}
	defer Close(db)

	switch cfg.Driver {
	case "postgres":
		var exists bool
		if err := db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", cfg.Name).Scan(&exists).Error; err != nil {
			return err
		}
		if !exists {
			return db.Exec("CREATE DATABASE " + cfg.Name).Error
		}
	case "mysql":
		return db.Exec("CREATE DATABASE IF NOT EXISTS " + cfg.Name).Error
	case "mssql":
		return db.Exec("IF DB_ID(?) IS NULL CREATE DATABASE "+cfg.Name, cfg.Name).Error
	}
	return nil
}

func isValidDBName(name string) bool {
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_]+$`, name)
	return matched
}
