package db

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init establishes the database connection and returns both the underlying
// sql.DB handle and the GORM handle.
func Init(driverName, databaseURI string) (*sql.DB, *gorm.DB, error) {
	wrapMsg := "unable to initialize the database connection"

	if driverName != "postgres" {
		return nil, nil, errors.Errorf("unsupported database driver: %s", driverName)
	}

	gormdb, err := gorm.Open(postgres.Open(databaseURI), &gorm.Config{})
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	if err := gormdb.Use(otelgorm.NewPlugin()); err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	db, err := gormdb.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}
	if err := db.Ping(); err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	return db, gormdb, nil
}
