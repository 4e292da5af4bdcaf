package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bestworkers-api/internal/domain"
	"github.com/bestworkers-api/internal/pkg/id"
	"github.com/bestworkers-api/internal/pkg/validate"
)

type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	Pin        string `json:"pin" validate:"required,pin"`
	ConfirmPin string `json:"confirm_pin" validate:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest carries the code plus the registration fields, which are
// resubmitted because no account exists until verification succeeds.
type VerifyOTPRequest struct {
	Email      string `json:"email" validate:"required,email"`
	OTP        string `json:"otp" validate:"required,numeric"`
	Name       string `json:"name" validate:"required"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	Pin        string `json:"pin" validate:"required,pin"`
	ConfirmPin string `json:"confirm_pin" validate:"required"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required"`
}

// Session is returned by successful verification and login.
type Session struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	ResendOTP(ctx context.Context, req ResendOTPRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Account, error)
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	Find(ctx context.Context, email, code string) (*domain.OTP, error)
	Delete(ctx context.Context, o *domain.OTP) error
	DeleteAll(ctx context.Context, email string) error
}

type codeGenerator interface {
	Generate() (string, error)
}

type pinHasher interface {
	Hash(pin string) (string, error)
	Verify(pin, digest string) bool
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type tokenIssuer interface {
	Issue(accountID string) (string, error)
}

type service struct {
	accounts    accountStore
	otps        otpStore
	generator   codeGenerator
	hasher      pinHasher
	mailer      mailer
	sms         smsSender
	issuer      tokenIssuer
	otpTTL      time.Duration
	countryCode string
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// ServiceDeps wires the workflow's collaborators. SMSSender is optional.
type ServiceDeps struct {
	Accounts       accountStore
	OTPs           otpStore
	Generator      codeGenerator
	Hasher         pinHasher
	Mailer         mailer
	SMSSender      smsSender
	Issuer         tokenIssuer
	OTPTTL         time.Duration
	SMSCountryCode string
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.OTPTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		accounts:    deps.Accounts,
		otps:        deps.OTPs,
		generator:   deps.Generator,
		hasher:      deps.Hasher,
		mailer:      deps.Mailer,
		sms:         deps.SMSSender,
		issuer:      deps.Issuer,
		otpTTL:      ttl,
		countryCode: deps.SMSCountryCode,
		now:         time.Now,
	}
}

var (
	errPinMismatch        = domain.NewError(domain.ErrValidation, "PIN and confirmation do not match")
	errInvalidCode        = domain.NewError(domain.ErrValidation, "invalid or expired code")
	errAlreadyVerified    = domain.NewError(domain.ErrConflict, "already verified, please log in")
	errAccountExists      = domain.NewError(domain.ErrConflict, "account already exists")
	errInvalidCredentials = domain.NewError(domain.ErrAuth, "invalid credentials")
	errNotVerified        = domain.NewError(domain.ErrAuth, "account not verified")
)

func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Pin != req.ConfirmPin {
		return errPinMismatch
	}
	if err := s.ensureAvailable(ctx, req.Email, req.Mobile); err != nil {
		return err
	}
	return s.issueOTP(ctx, req.Email)
}

func (s *service) ResendOTP(ctx context.Context, req ResendOTPRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.issueOTP(ctx, req.Email)
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*Session, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Pin != req.ConfirmPin {
		return nil, errPinMismatch
	}

	o, err := s.otps.Find(ctx, req.Email, req.OTP)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCode
	}
	if err != nil {
		return nil, domain.Upstream("could not check verification code", err)
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Verified:
		s.discardOTP(ctx, o)
		return nil, errAlreadyVerified
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, domain.Upstream("could not look up account", err)
	}

	pinHash, err := s.hasher.Hash(req.Pin)
	if err != nil {
		return nil, domain.Upstream("could not secure PIN", err)
	}
	now := s.now().UTC()
	a := &domain.Account{
		AccountID: id.New(),
		Name:      req.Name,
		Email:     req.Email,
		Mobile:    req.Mobile,
		PinHash:   pinHash,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errAccountExists
		}
		return nil, domain.Upstream("could not create account", err)
	}
	s.discardOTP(ctx, o)

	token, err := s.issuer.Issue(a.AccountID)
	if err != nil {
		return nil, domain.Upstream("could not issue session", err)
	}
	s.sendWelcomeSMS(ctx, a)
	return &Session{Token: token, Account: a}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		// Keep the unknown-email path as slow as a wrong PIN.
		s.hasher.Verify(req.Pin, s.dummy())
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, domain.Upstream("could not look up account", err)
	}
	if !s.hasher.Verify(req.Pin, a.PinHash) {
		return nil, errInvalidCredentials
	}
	if !a.Verified {
		return nil, errNotVerified
	}
	token, err := s.issuer.Issue(a.AccountID)
	if err != nil {
		return nil, domain.Upstream("could not issue session", err)
	}
	return &Session{Token: token, Account: a}, nil
}

// ensureAvailable rejects an email or mobile already held by a verified
// account. Unverified rows never block a new registration.
func (s *service) ensureAvailable(ctx context.Context, email, mobile string) error {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err == nil && a.Verified {
		return domain.NewError(domain.ErrConflict, "email already registered")
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Upstream("could not look up account", err)
	}
	a, err = s.accounts.GetByMobile(ctx, mobile)
	if err == nil && a.Verified {
		return domain.NewError(domain.ErrConflict, "mobile already registered")
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Upstream("could not look up account", err)
	}
	return nil
}

// issueOTP replaces any pending code for email with a fresh one and mails
// it. A code that could not be delivered is removed again.
func (s *service) issueOTP(ctx context.Context, email string) error {
	if err := s.otps.DeleteAll(ctx, email); err != nil {
		return domain.Upstream("could not reset verification code", err)
	}
	code, err := s.generator.Generate()
	if err != nil {
		return domain.Upstream("could not generate verification code", err)
	}
	now := s.now().UTC()
	o := &domain.OTP{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
	}
	if err := s.otps.Put(ctx, o); err != nil {
		return domain.Upstream("could not store verification code", err)
	}

	body := fmt.Sprintf("Your BestWorkers verification code is %s. It expires in %d minutes.",
		code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(email, "Verify your email", body); err != nil {
		s.discardOTP(ctx, o)
		return domain.Upstream("could not send verification email", err)
	}
	return nil
}

func (s *service) discardOTP(ctx context.Context, o *domain.OTP) {
	if err := s.otps.Delete(ctx, o); err != nil {
		slog.Warn("failed to delete otp", "email", o.Email, "err", err)
	}
}

func (s *service) sendWelcomeSMS(ctx context.Context, a *domain.Account) {
	if s.sms == nil {
		return
	}
	msg := fmt.Sprintf("Hi %s, your BestWorkers account is active.", a.Name)
	if err := s.sms.SendSMS(ctx, s.countryCode+a.Mobile, msg); err != nil {
		slog.Warn("activation sms failed", "account_id", a.AccountID, "err", err)
	}
}

func (s *service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("0000")
	})
	return s.dummyHash
}
