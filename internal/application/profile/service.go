package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bestworkers-api/internal/domain"
	"github.com/bestworkers-api/internal/pkg/id"
	"github.com/bestworkers-api/internal/pkg/validate"
)

// Stored attribute names used in partial update maps.
const (
	fieldName               = "name"
	fieldEmail              = "email"
	fieldMobileNo           = "mobile_no"
	fieldSecondaryMobileNo  = "secondary_mobile_no"
	fieldState              = "state"
	fieldDistrict           = "district"
	fieldCity               = "city"
	fieldServiceCategory    = "service_category"
	fieldServiceCategoryKey = "service_category_lc"
	fieldServiceName        = "service_name"
	fieldServiceNameKey     = "service_name_lc"
	fieldDesignation        = "designation"
	fieldExperience         = "experience"
	fieldServicePrice       = "service_price"
	fieldPriceUnit          = "price_unit"
	fieldNeedSupport        = "need_support"
	fieldDescription        = "description"
)

type Service interface {
	Create(ctx context.Context, accountID string, req domain.CreateProfileRequest) (*domain.Profile, error)
	FindByService(ctx context.Context, serviceName, serviceCategory string) ([]domain.Profile, error)
	UpdateOwn(ctx context.Context, accountID string, req domain.UpdateProfileRequest) (*domain.Profile, error)
}

type profileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByAccount(ctx context.Context, accountID string) (*domain.Profile, error)
	FindByService(ctx context.Context, serviceName, serviceCategory string) ([]domain.Profile, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) (*domain.Profile, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	SetHasProfile(ctx context.Context, accountID string) error
}

type service struct {
	profiles profileStore
	accounts accountStore
	now      func() time.Time
}

type ServiceDeps struct {
	Profiles profileStore
	Accounts accountStore
}

func NewService(deps ServiceDeps) Service {
	return &service{profiles: deps.Profiles, accounts: deps.Accounts, now: time.Now}
}

var (
	errNegativePrice   = domain.NewError(domain.ErrValidation, "service_price must not be negative")
	errProfileNotFound = domain.NewError(domain.ErrNotFound, "profile not found")
	errProfileExists   = domain.NewError(domain.ErrConflict, "profile already exists")
)

// Create links a new profile to accountID and flags the account as having one.
func (s *service) Create(ctx context.Context, accountID string, req domain.CreateProfileRequest) (*domain.Profile, error) {
	req.TrimSpace()
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.ServicePrice.Value != nil && *req.ServicePrice.Value < 0 {
		return nil, errNegativePrice
	}
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.ErrNotFound, "account not found")
		}
		return nil, domain.Upstream("could not load account", err)
	}

	now := s.now().UTC()
	p := &domain.Profile{
		ProfileID:          id.New(),
		AccountID:          accountID,
		Name:               req.Name,
		Email:              req.Email,
		MobileNo:           req.MobileNo,
		SecondaryMobileNo:  req.SecondaryMobileNo,
		State:              req.State,
		District:           req.District,
		City:               req.City,
		ServiceCategory:    req.ServiceCategory,
		ServiceName:        req.ServiceName,
		Designation:        req.Designation,
		Experience:         req.Experience,
		ServicePrice:       req.ServicePrice.Value,
		PriceUnit:          req.PriceUnit,
		NeedSupport:        req.NeedSupport,
		Description:        req.Description,
		Status:             domain.ProfileStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
		ServiceNameKey:     domain.NormalizeKey(req.ServiceName),
		ServiceCategoryKey: domain.NormalizeKey(req.ServiceCategory),
	}
	if p.PriceUnit == "" {
		p.PriceUnit = domain.DefaultPriceUnit
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, s.relink(ctx, a)
		}
		return nil, domain.Upstream("could not create profile", err)
	}
	if err := s.link(ctx, accountID); err != nil {
		return nil, err
	}
	return p, nil
}

// relink handles a create that found a profile already stored for a. If an
// earlier create stored it but failed to flag the account, the flag is set
// now. The caller always gets a conflict.
func (s *service) relink(ctx context.Context, a *domain.Account) error {
	if a.HasProfile {
		return errProfileExists
	}
	if err := s.link(ctx, a.AccountID); err != nil {
		return err
	}
	slog.Info("account flag restored for existing profile", "account_id", a.AccountID)
	return errProfileExists
}

func (s *service) link(ctx context.Context, accountID string) error {
	if err := s.accounts.SetHasProfile(ctx, accountID); err != nil {
		slog.Error("profile stored but account flag not set", "account_id", accountID, "err", err)
		return domain.Upstream("could not link profile to account", err)
	}
	return nil
}

// FindByService matches serviceName (and serviceCategory, when non-empty)
// case-insensitively as literal text.
func (s *service) FindByService(ctx context.Context, serviceName, serviceCategory string) ([]domain.Profile, error) {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		return nil, domain.NewError(domain.ErrValidation, "service_name is required")
	}
	out, err := s.profiles.FindByService(ctx, serviceName, strings.TrimSpace(serviceCategory))
	if err != nil {
		return nil, domain.Upstream("could not search profiles", err)
	}
	return out, nil
}

// UpdateOwn applies the fields present in req to the caller's own profile.
func (s *service) UpdateOwn(ctx context.Context, accountID string, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	req.TrimSpace()
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.ServicePrice.Value != nil && *req.ServicePrice.Value < 0 {
		return nil, errNegativePrice
	}

	updates := buildUpdates(req)
	var (
		p   *domain.Profile
		err error
	)
	if len(updates) == 0 {
		p, err = s.profiles.GetByAccount(ctx, accountID)
	} else {
		p, err = s.profiles.Update(ctx, accountID, updates)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, domain.Upstream("could not update profile", err)
	}
	return p, nil
}

func buildUpdates(req domain.UpdateProfileRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	setStr := func(field string, v *string) {
		if v != nil {
			updates[field] = *v
		}
	}
	setStr(fieldName, req.Name)
	setStr(fieldEmail, req.Email)
	setStr(fieldMobileNo, req.MobileNo)
	setStr(fieldSecondaryMobileNo, req.SecondaryMobileNo)
	setStr(fieldState, req.State)
	setStr(fieldDistrict, req.District)
	setStr(fieldCity, req.City)
	setStr(fieldDesignation, req.Designation)
	setStr(fieldExperience, req.Experience)
	setStr(fieldPriceUnit, req.PriceUnit)
	setStr(fieldDescription, req.Description)
	if req.ServiceName != nil {
		updates[fieldServiceName] = *req.ServiceName
		updates[fieldServiceNameKey] = domain.NormalizeKey(*req.ServiceName)
	}
	if req.ServiceCategory != nil {
		updates[fieldServiceCategory] = *req.ServiceCategory
		updates[fieldServiceCategoryKey] = domain.NormalizeKey(*req.ServiceCategory)
	}
	if req.NeedSupport != nil {
		updates[fieldNeedSupport] = *req.NeedSupport
	}
	if req.ServicePrice.Set {
		if req.ServicePrice.Value == nil {
			updates[fieldServicePrice] = nil
		} else {
			updates[fieldServicePrice] = *req.ServicePrice.Value
		}
	}
	return updates
}
