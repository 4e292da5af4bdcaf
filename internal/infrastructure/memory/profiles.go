package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/bestworkers-api/internal/domain"
	"github.com/bestworkers-api/internal/pkg/pattern"
)

// ProfileStore is an in-memory profile store keyed by owning account.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.Profile)}
}

func (s *ProfileStore) Create(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.AccountID]; ok {
		return fmt.Errorf("profile already exists: %w", domain.ErrConflict)
	}
	s.profiles[p.AccountID] = *p
	return nil
}

func (s *ProfileStore) GetByAccount(_ context.Context, accountID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[accountID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// FindByService matches service name, and category when given, as
// case-insensitive literals. Results are ordered by creation time.
func (s *ProfileStore) FindByService(_ context.Context, serviceName, serviceCategory string) ([]domain.Profile, error) {
	name := pattern.Literal(serviceName)
	var category *regexp.Regexp
	if serviceCategory != "" {
		category = pattern.Literal(serviceCategory)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Profile{}
	for _, p := range s.profiles {
		if !name.MatchString(p.ServiceName) {
			continue
		}
		if category != nil && !category.MatchString(p.ServiceCategory) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update applies updates keyed by stored attribute name. A nil value clears
// the field.
func (s *ProfileStore) Update(_ context.Context, accountID string, updates map[string]interface{}) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[accountID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	for k, v := range updates {
		if err := applyProfileField(&p, k, v); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = time.Now().UTC()
	s.profiles[accountID] = p
	return &p, nil
}

func applyProfileField(p *domain.Profile, field string, v interface{}) error {
	if field == "service_price" {
		f, _ := v.(float64)
		if v == nil {
			p.ServicePrice = nil
		} else {
			p.ServicePrice = &f
		}
		return nil
	}
	if field == "need_support" {
		p.NeedSupport, _ = v.(bool)
		return nil
	}
	str, _ := v.(string)
	switch field {
	case "name":
		p.Name = str
	case "email":
		p.Email = str
	case "mobile_no":
		p.MobileNo = str
	case "secondary_mobile_no":
		p.SecondaryMobileNo = str
	case "state":
		p.State = str
	case "district":
		p.District = str
	case "city":
		p.City = str
	case "service_category":
		p.ServiceCategory = str
	case "service_category_lc":
		p.ServiceCategoryKey = str
	case "service_name":
		p.ServiceName = str
	case "service_name_lc":
		p.ServiceNameKey = str
	case "designation":
		p.Designation = str
	case "experience":
		p.Experience = str
	case "price_unit":
		p.PriceUnit = str
	case "description":
		p.Description = str
	case "status":
		p.Status = str
	case "updated_at":
	default:
		return fmt.Errorf("unknown profile field %q", field)
	}
	return nil
}
