package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"realestate-trade-map/internal/models"
)

// GormDB reads trade rows from MySQL. It never writes.
type GormDB struct {
	db    *gorm.DB
	table string
}

func NewGormDB(host, port, user, password, dbname, table string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return NewGormDBFromDB(db, table), nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB, table string) *GormDB {
	if table == "" {
		table = models.Trade{}.TableName()
	}
	return &GormDB{db: db, table: table}
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying gorm.DB instance
func (gdb *GormDB) GetDB() (*gorm.DB, error) {
	return gdb.db, nil
}

// Features returns every row of dataset as a point feature, in id order.
func (gdb *GormDB) Features(ctx context.Context, dataset string) ([]models.Feature, error) {
	var trades []models.Trade
	err := gdb.db.WithContext(ctx).
		Table(gdb.table).
		Where("dataset = ?", dataset).
		Order("id ASC").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	return toFeatures(trades), nil
}

// Datasets lists the distinct dataset names in the table.
func (gdb *GormDB) Datasets(ctx context.Context) ([]string, error) {
	var names []string
	err := gdb.db.WithContext(ctx).
		Table(gdb.table).
		Distinct("dataset").
		Order("dataset ASC").
		Pluck("dataset", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return names, nil
}

func toFeatures(trades []models.Trade) []models.Feature {
	features := make([]models.Feature, 0, len(trades))
	for i := range trades {
		features = append(features, trades[i].ToFeature())
	}
	return features
}
