package repository

import (
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/yourorg/tagpack-service/internal/config"
)

// Connect opens the tag store through the pgx driver and applies pool limits
func Connect(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", DSN(dbConfig))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

// DSN formats the key/value connection string of dbConfig
func DSN(dbConfig config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)
}
