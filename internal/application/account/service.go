package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bestworkers-api/internal/domain"
	"github.com/bestworkers-api/internal/pkg/validate"
)

type Service interface {
	GetCurrent(ctx context.Context, accountID string) (domain.AccountView, error)
	UpdateAccount(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	ChangePin(ctx context.Context, accountID string, req domain.ChangePinRequest) error
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateDetails(ctx context.Context, prev, next *domain.Account) error
	UpdatePinHash(ctx context.Context, accountID, pinHash string) error
}

type profileStore interface {
	GetByAccount(ctx context.Context, accountID string) (*domain.Profile, error)
}

type pinHasher interface {
	Hash(pin string) (string, error)
	Verify(pin, digest string) bool
}

type service struct {
	accounts accountStore
	profiles profileStore
	hasher   pinHasher
}

type ServiceDeps struct {
	Accounts accountStore
	Profiles profileStore
	Hasher   pinHasher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.Accounts,
		profiles: deps.Profiles,
		hasher:   deps.Hasher,
	}
}

// GetCurrent returns the account as a BasicAccount, or as a
// ProfessionalAccount when it has a linked profile.
func (s *service) GetCurrent(ctx context.Context, accountID string) (domain.AccountView, error) {
	a, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !a.HasProfile {
		return domain.BasicAccount{Account: *a}, nil
	}
	p, err := s.profiles.GetByAccount(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("account flagged with profile but none stored", "account_id", accountID)
		return domain.BasicAccount{Account: *a}, nil
	}
	if err != nil {
		return nil, domain.Upstream("could not load profile", err)
	}
	return domain.ProfessionalAccount{Account: *a, Profile: *p}, nil
}

func (s *service) UpdateAccount(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	if req.Email != nil {
		e := domain.NormalizeEmail(*req.Email)
		req.Email = &e
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	prev, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	next := *prev
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Email != nil {
		next.Email = *req.Email
	}
	if req.Mobile != nil {
		next.Mobile = *req.Mobile
	}
	if err := s.accounts.UpdateDetails(ctx, prev, &next); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, domain.NewError(domain.ErrConflict, "email or mobile already in use")
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.NewError(domain.ErrNotFound, "account not found")
		}
		return nil, domain.Upstream("could not update account", err)
	}
	return s.load(ctx, accountID)
}

func (s *service) ChangePin(ctx context.Context, accountID string, req domain.ChangePinRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	a, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(req.CurrentPin, a.PinHash) {
		return domain.NewError(domain.ErrAuth, "current PIN is incorrect")
	}
	h, err := s.hasher.Hash(req.NewPin)
	if err != nil {
		return domain.Upstream("could not secure PIN", err)
	}
	if err := s.accounts.UpdatePinHash(ctx, accountID, h); err != nil {
		return domain.Upstream("could not update PIN", err)
	}
	return nil
}

func (s *service) load(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "account not found")
	}
	if err != nil {
		return nil, domain.Upstream("could not load account", err)
	}
	return a, nil
}
