package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firetrack/backend/internal/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const DuplicateEntry = 1062

// schema is applied on startup. Statements must stay idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user (
		id BINARY(16) NOT NULL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		activated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_user_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS activation_code (
		user_id BINARY(16) NOT NULL PRIMARY KEY,
		code INT NOT NULL,
		expiration_time DATETIME(6) NOT NULL,
		attempts SMALLINT NOT NULL DEFAULT 0,
		KEY idx_activation_code_expiration_time (expiration_time),
		CONSTRAINT fk_activation_code_user FOREIGN KEY (user_id) REFERENCES user (id) ON DELETE CASCADE
	)`,
}

func New(cfg config.Database) (*sqlx.DB, error) {
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time load location failed: %w", err)
	}
	conf := mysql.NewConfig()
	conf.Net = cfg.Net
	conf.Addr = cfg.Server
	conf.User = cfg.User
	conf.Passwd = cfg.Password
	conf.DBName = cfg.DBName
	conf.Timeout = cfg.Timeout
	conf.Loc = location
	conf.ParseTime = true

	dbConn, err := sqlx.Connect("mysql", conf.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("db connection failed: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConnections)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConnections)

	if err := dbConn.Ping(); err != nil {
		return nil, err
	}

	return dbConn, nil
}

// Migrate creates the tables owned by this service when they are missing.
func Migrate(ctx context.Context, dbConn *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := dbConn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d failed: %w", i, err)
		}
	}

	return nil
}

// IsDuplicateEntry reports whether err is a MySQL unique key violation.
func IsDuplicateEntry(err error) bool {
	var mysqlError *mysql.MySQLError
	return errors.As(err, &mysqlError) && mysqlError.Number == DuplicateEntry
}
