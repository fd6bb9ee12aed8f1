package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
)

// dsnParams make transactions take the write lock up front and wait for it,
// so concurrent relation upserts queue instead of failing with SQLITE_BUSY.
const dsnParams = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate"

// DriverName is the sqlite driver with the application's SQL functions
// registered on every connection.
const DriverName = "sqlite3_bookstore"

// CaseFoldFunc is the SQL function folding text to lower case. Unlike
// SQLite's LOWER it handles every Unicode letter, not just ASCII.
const CaseFoldFunc = "casefold"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(CaseFoldFunc, strings.ToLower, true)
		},
	})
}

// Dialector opens dsn through DriverName.
func Dialector(dsn string) gorm.Dialector {
	return sqlite.Dialector{DriverName: DriverName, DSN: dsn}
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(Dialector(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.WithField("path", dbPath).Info("Database initialized")

	return &Database{DB: db}, nil
}

// Migrate creates or updates every table the application owns.
// The sessions table is managed by auth.NewSessionManager.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.UserBookRelation{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + dsnParams
	}
	return path + "?" + dsnParams
}
