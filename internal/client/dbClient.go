package client

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"bookclub-membership/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// InitDatabase opens the subscription store. "sqlite://<path>" selects sqlite,
// anything else is treated as a mysql DSN.
func InitDatabase(databaseURL string) (*gorm.DB, error) {
	return openDatabase(databaseURL, os.Stdout)
}

// gormLogger logs slow queries and real errors. Lookups that find nothing are
// expected on every first keyed checkout and are not logged.
func gormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func openDatabase(databaseURL string, logOut io.Writer) (*gorm.DB, error) {
	dialector := dialectorFor(databaseURL)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger(logOut),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// sqlite serializes writers anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Subscription{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dialectorFor(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, sqliteScheme) {
		return sqlite.Open(strings.TrimPrefix(databaseURL, sqliteScheme))
	}
	return mysql.Open(databaseURL)
}
