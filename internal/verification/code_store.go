// Package verification issues and checks one-time SMS login codes backed by Redis.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCodeTTL  = 5 * time.Minute
	DefaultCooldown = 60 * time.Second

	codeKeyPrefix     = "sms:code:"
	cooldownKeyPrefix = "sms:cooldown:"
)

// ErrCooldown is returned when a code was sent to the same phone too recently.
var ErrCooldown = errors.New("发送过于频繁，请 60 秒后再试")

// RedisCodeStore keeps one pending code per phone number.
type RedisCodeStore struct {
	client   redis.Cmdable
	codeTTL  time.Duration
	cooldown time.Duration
	generate func() (string, error)
}

// NewRedisCodeStore creates a store. Zero durations use the defaults.
func NewRedisCodeStore(client redis.Cmdable, codeTTL, cooldown time.Duration) *RedisCodeStore {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RedisCodeStore{
		client:   client,
		codeTTL:  codeTTL,
		cooldown: cooldown,
		generate: GenerateCode,
	}
}

// Issue creates a fresh code for phone, replacing any pending one.
func (s *RedisCodeStore) Issue(ctx context.Context, phone string) (string, error) {
	ok, err := s.client.SetNX(ctx, cooldownKeyPrefix+phone, 1, s.cooldown).Result()
	if err != nil {
		return "", fmt.Errorf("failed to set send cooldown: %w", err)
	}
	if !ok {
		return "", ErrCooldown
	}

	code, err := s.generate()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, codeKeyPrefix+phone, code, s.codeTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}
	return code, nil
}

// Consume reports whether code matches the pending code for phone, deleting it on success.
func (s *RedisCodeStore) Consume(ctx context.Context, phone, code string) (bool, error) {
	stored, err := s.client.Get(ctx, codeKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := s.client.Del(ctx, codeKeyPrefix+phone).Err(); err != nil {
		return false, fmt.Errorf("failed to delete verification code: %w", err)
	}
	return true, nil
}

// GenerateCode returns a random six-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
