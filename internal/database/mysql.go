package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	return db, nil
}

// buildMySQLDSN renders the DSN through the driver's own formatter. Timestamps are
// stored in UTC and guest names need the full utf8mb4 range.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		if _, err := mysqldriver.ParseDSN(cfg.DSN); err != nil {
			return "", fmt.Errorf("mysql: invalid dsn: %w", err)
		}
		return cfg.DSN, nil
	}

	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	driverCfg := mysqldriver.NewConfig()
	driverCfg.User = cfg.User
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	driverCfg.DBName = cfg.Name
	driverCfg.ParseTime = true
	driverCfg.Loc = time.UTC
	driverCfg.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		driverCfg.Params[key] = value
	}

	return driverCfg.FormatDSN(), nil
}
