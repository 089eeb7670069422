package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"time"

	"zencms/config"
	"zencms/logger"

	"github.com/go-sql-driver/mysql"
)

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DSN 根据配置生成 MySQL 连接串，withDB 为 false 时不指定库名
func DSN(cfg *config.Config, withDB bool) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	if withDB {
		mc.DBName = cfg.DBName
	}
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// EnsureDatabase 在库不存在时创建，GORM 迁移之前调用
func EnsureDatabase(ctx context.Context, cfg *config.Config) error {
	if !dbNamePattern.MatchString(cfg.DBName) {
		return fmt.Errorf("invalid database name %q", cfg.DBName)
	}

	sqlDB, err := sql.Open("mysql", DSN(cfg, false))
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBName)
	if _, err := sqlDB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %s: %w", cfg.DBName, err)
	}

	logger.Info("Database ensured", logger.String("name", cfg.DBName))
	return nil
}
