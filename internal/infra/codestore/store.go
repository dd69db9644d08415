package codestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound 表示 key 不存在或已过期。
var ErrNotFound = errors.New("code not found or expired")

const (
	imageKeyPrefix   = "img_"
	smsKeyPrefix     = "sms_"
	smsFlagKeyPrefix = "sms_flag_"
)

// ImageKey 返回图片验证码在存储中的 key。
func ImageKey(imageCodeID string) string {
	return imageKeyPrefix + imageCodeID
}

// SMSKey 返回短信验证码在存储中的 key。
func SMSKey(mobile string) string {
	return smsKeyPrefix + mobile
}

// SMSFlagKey 返回短信限流标记在存储中的 key。
func SMSFlagKey(mobile string) string {
	return smsFlagKeyPrefix + mobile
}

// Entry 描述一次带有效期的写入。
type Entry struct {
	Key   string
	Value string
	TTL   time.Duration
}

// Store 是验证码材料的短期 KV 存储，跨进程共享，所有条目都带 TTL。
type Store struct {
	client *redis.Client
}

// New 构造验证码存储，要求传入已就绪的 redis 客户端。
func New(client *redis.Client) *Store {
	if client == nil {
		panic("codestore requires redis client")
	}
	return &Store{client: client}
}

// SetWithTTL 写入单个条目，覆盖同名 key。
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("codestore set %s: %w", key, err)
	}
	return nil
}

// Get 读取条目，key 不存在时返回 ErrNotFound。
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("codestore get %s: %w", key, err)
	}
	return val, nil
}

// Delete 删除条目，key 不存在时静默成功。
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("codestore del %s: %w", key, err)
	}
	return nil
}

// Pipeline 以事务管道一次写入多个条目，全部成功或整体失败，
// 短信验证码与限流标记必须走这里一起落库。
func (s *Store) Pipeline(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, entry := range entries {
			pipe.Set(ctx, entry.Key, entry.Value, entry.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("codestore pipeline: %w", err)
	}
	return nil
}

// AcquireFlag 以 SETNX 语义抢占限流标记，返回是否抢占成功。
// 并发请求只有一个能拿到标记，其余直接视为触发限流。
func (s *Store) AcquireFlag(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("codestore setnx %s: %w", key, err)
	}
	return ok, nil
}
