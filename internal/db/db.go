package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"canteen/internal/logger"
	"canteen/internal/model"
)

// Open returns a connected GORM DB instance for the given driver name.
// Supported drivers are mysql, postgres and sqlite.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger.Log),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// newGormLogger routes GORM warnings, slow queries and errors through zap.
// Missing rows are an expected outcome and are not logged.
func newGormLogger(zl *zap.Logger) gormlogger.Interface {
	std, err := zap.NewStdLogAt(zl.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		std = zap.NewStdLog(zl.Named("gorm"))
	}
	return gormlogger.New(std, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Allergen{},
		&model.User{},
		&model.Dish{},
		&model.Order{},
		&model.PurchaseRequest{},
		&model.BalanceTopupRequest{},
		&model.Review{},
		&model.LedgerEntry{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, join tables included, in reverse dependency order.
func Reset(db *gorm.DB) error {
	tables := []interface{}{"dish_allergens", "user_allergens"}
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		tables = append(tables, models[i])
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
