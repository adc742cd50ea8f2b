package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// IgnoredAddressModel is the GORM model for the ignored_addresses table
type IgnoredAddressModel struct {
	IP        string    `gorm:"column:ip;primaryKey"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides GORM's pluralized default
func (IgnoredAddressModel) TableName() string {
	return "ignored_addresses"
}

// MySQLStore implements Store using MySQL with GORM
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates a new MySQL store using GORM
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// The list is read once at startup, a small pool is plenty
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// IgnoredAddresses selects every ip in the table
func (s *MySQLStore) IgnoredAddresses(ctx context.Context) ([]string, error) {
	var addresses []string

	// SELECT `ip` FROM `ignored_addresses` ORDER BY ip
	result := s.db.WithContext(ctx).
		Model(&IgnoredAddressModel{}).
		Order("ip").
		Pluck("ip", &addresses)
	if result.Error != nil {
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	return addresses, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
