package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"Gin_postgres_redis_fleet_tool/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 优先 DATABASE_URL，否则由 DB_* 拼接
func DSN() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := Open(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return conn, nil
}

// Open 打开连接并迁移；测试里传入 sqlite 方言
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLog := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{}, &models.Invite{},
		&models.StaffProfile{}, &models.ActivityLog{}, &models.Timesheet{}, &models.Expense{},
		&models.Customer{}, &models.MachineSpecification{}, &models.RentalMachine{}, &models.Treadmill{},
		&models.RentalRecord{}, &models.Job{}, &models.Part{}, &models.PartUsage{},
	); err != nil {
		return err
	}

	// 同一台机器最多一条“未归还”的出租记录
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_machine
	  ON %s (machine_id)
	  WHERE return_date IS NULL;
	`, models.RentalTable, models.RentalTable)).Error; err != nil {
		return err
	}

	// 仪表盘按状态/档位筛选
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_status_tier
	  ON %s (status, value_tier);
	`, models.MachineTable, models.MachineTable)).Error; err != nil {
		return err
	}

	return nil
}
