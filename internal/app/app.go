package app

import (
	"context"
	"database/sql"
	"fmt"

	"newsportal/internal/config"
	"newsportal/internal/infra/client"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Resources 持有进程级别的外部资源连接。
type Resources struct {
	MySQL client.MySQLConfig
	DB    *gorm.DB
	SQLDB *sql.DB
	Redis *redis.Client
}

// Bootstrap 建立 MySQL 与 Redis 连接。两者都是门户的硬依赖：
// 验证码与限流标记放 Redis，其余数据在 MySQL。
func Bootstrap(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()

	mysqlCfg, err := client.NewDefaultMySQLConfig()
	if err != nil {
		return nil, fmt.Errorf("build mysql config: %w", err)
	}

	db, sqlDB, err := client.NewGORMMySQL(mysqlCfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	redisOpts, err := client.NewDefaultRedisOptions()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("build redis options: %w", err)
	}
	rdb, err := client.NewRedisClient(redisOpts)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &Resources{
		MySQL: mysqlCfg,
		DB:    db,
		SQLDB: sqlDB,
		Redis: rdb,
	}, nil
}

// Close 释放全部外部连接。
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.SQLDB != nil {
		if err := r.SQLDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
