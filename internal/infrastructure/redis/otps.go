package redisinfra

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"

	"github.com/bestworkers-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	fieldCode      = "code"
	fieldIssuedAt  = "issued_at"
	fieldExpiresAt = "expires_at"
)

// deleteIfCode removes the hash only while it still holds ARGV[1].
var deleteIfCode = redis.NewScript(`
if redis.call("HGET", KEYS[1], "code") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPStore keeps one pending code per email as a hash under otp:<email>,
// expired by Redis itself.
type OTPStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client, now: time.Now}
}

func otpKey(email string) string { return "otp:" + email }

// Put writes o, replacing whatever record the email had before.
func (s *OTPStore) Put(ctx context.Context, o *domain.OTP) error {
	ttl := time.Unix(o.ExpiresAt, 0).Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("otp already expired")
	}
	key := otpKey(o.Email)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldCode, o.Code,
			fieldIssuedAt, o.IssuedAt.Unix(),
			fieldExpiresAt, o.ExpiresAt,
		)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put otp: %w", err)
	}
	return nil
}

// Find returns the live record for email when its code equals code.
func (s *OTPStore) Find(ctx context.Context, email, code string) (*domain.OTP, error) {
	fields, err := s.client.HGetAll(ctx, otpKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	stored, ok := fields[fieldCode]
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	issuedAt, _ := strconv.ParseInt(fields[fieldIssuedAt], 10, 64)
	expiresAt, _ := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	o := &domain.OTP{
		Email:     email,
		Code:      stored,
		IssuedAt:  time.Unix(issuedAt, 0).UTC(),
		ExpiresAt: expiresAt,
	}
	if o.Expired(s.now()) {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return o, nil
}

// Delete removes o only if it is still the current record for its email.
func (s *OTPStore) Delete(ctx context.Context, o *domain.OTP) error {
	if err := deleteIfCode.Run(ctx, s.client, []string{otpKey(o.Email)}, o.Code).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}

func (s *OTPStore) DeleteAll(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}
