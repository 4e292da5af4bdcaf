package http

import (
	"context"

	"github.com/bestworkers-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	// GetByEmail returns the full record, PIN hash included.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Account, error)
	SetHasProfile(ctx context.Context, accountID string) error
	UpdatePinHash(ctx context.Context, accountID, pinHash string) error
	UpdateDetails(ctx context.Context, prev, next *domain.Account) error
}

// OTPRepository is the minimal interface the router requires from an OTP store.
type OTPRepository interface {
	Put(ctx context.Context, o *domain.OTP) error
	Find(ctx context.Context, email, code string) (*domain.OTP, error)
	Delete(ctx context.Context, o *domain.OTP) error
	DeleteAll(ctx context.Context, email string) error
}

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByAccount(ctx context.Context, accountID string) (*domain.Profile, error)
	FindByService(ctx context.Context, serviceName, serviceCategory string) ([]domain.Profile, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) (*domain.Profile, error)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers activation texts.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}
