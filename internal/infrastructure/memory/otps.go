package memory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/bestworkers-api/internal/domain"
)

// OTPStore keeps one pending code per email. Expired records are dropped
// when they are next read.
type OTPStore struct {
	mu   sync.Mutex
	otps map[string]domain.OTP
	now  func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{otps: make(map[string]domain.OTP), now: time.Now}
}

// WithClock replaces the store's time source.
func (s *OTPStore) WithClock(now func() time.Time) *OTPStore {
	s.now = now
	return s
}

func (s *OTPStore) Put(_ context.Context, o *domain.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[o.Email] = *o
	return nil
}

func (s *OTPStore) Find(_ context.Context, email, code string) (*domain.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.otps[email]
	if ok && o.Expired(s.now()) {
		delete(s.otps, email)
		ok = false
	}
	if !ok || subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return &o, nil
}

func (s *OTPStore) Delete(_ context.Context, o *domain.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.otps[o.Email]; ok && cur.Code == o.Code {
		delete(s.otps, o.Email)
	}
	return nil
}

func (s *OTPStore) DeleteAll(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, email)
	return nil
}
