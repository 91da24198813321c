package database

import (
	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/internal/config"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *logger.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DSN(), debug)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	log.Infow("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// Open connects with a raw DSN. Unique violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Receipt{},
		&entity.ReceiptSequence{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

// SeedDefaultData creates the receipt counter, starting just below floor or
// at the highest receipt already stored. Existing counters are left untouched.
func SeedDefaultData(db *gorm.DB, floor int64) error {
	err := db.Exec(`
INSERT INTO receipt_sequences (name, last_value, updated_at)
VALUES (?, GREATEST(? - 1, (SELECT COALESCE(MAX(receipt_number), 0) FROM receipts)), NOW())
ON CONFLICT (name) DO NOTHING`, entity.ReceiptSequenceName, floor).Error
	if err != nil {
		return errors.Wrap(err, "failed to seed receipt sequence")
	}
	return nil
}
