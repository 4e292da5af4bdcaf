package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bestworkers-api/internal/domain"
)

// AccountStore is an in-memory account store with the same uniqueness
// guarantees as the DynamoDB repository.
type AccountStore struct {
	mu       sync.RWMutex
	byID     map[string]domain.Account
	byEmail  map[string]string
	byMobile map[string]string
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:     make(map[string]domain.Account),
		byEmail:  make(map[string]string),
		byMobile: make(map[string]string),
	}
}

func (s *AccountStore) Create(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.AccountID]; ok {
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	if _, ok := s.byEmail[a.Email]; ok {
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	if _, ok := s.byMobile[a.Mobile]; ok {
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	s.byID[a.AccountID] = *a
	s.byEmail[a.Email] = a.AccountID
	s.byMobile[a.Mobile] = a.AccountID
	return nil
}

func (s *AccountStore) Get(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(accountID)
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(s.byEmail[email])
}

func (s *AccountStore) GetByMobile(_ context.Context, mobile string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(s.byMobile[mobile])
}

func (s *AccountStore) SetHasProfile(_ context.Context, accountID string) error {
	return s.mutate(accountID, func(a *domain.Account) { a.HasProfile = true })
}

func (s *AccountStore) UpdatePinHash(_ context.Context, accountID, pinHash string) error {
	return s.mutate(accountID, func(a *domain.Account) { a.PinHash = pinHash })
}

func (s *AccountStore) UpdateDetails(_ context.Context, prev, next *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[prev.AccountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if owner, ok := s.byEmail[next.Email]; ok && owner != prev.AccountID {
		return fmt.Errorf("email or mobile already in use: %w", domain.ErrConflict)
	}
	if owner, ok := s.byMobile[next.Mobile]; ok && owner != prev.AccountID {
		return fmt.Errorf("email or mobile already in use: %w", domain.ErrConflict)
	}
	delete(s.byEmail, cur.Email)
	delete(s.byMobile, cur.Mobile)
	cur.Name = next.Name
	cur.Email = next.Email
	cur.Mobile = next.Mobile
	cur.UpdatedAt = time.Now().UTC()
	s.byID[cur.AccountID] = cur
	s.byEmail[cur.Email] = cur.AccountID
	s.byMobile[cur.Mobile] = cur.AccountID
	return nil
}

func (s *AccountStore) get(accountID string) (*domain.Account, error) {
	a, ok := s.byID[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (s *AccountStore) mutate(accountID string, fn func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	fn(&a)
	a.UpdatedAt = time.Now().UTC()
	s.byID[accountID] = a
	return nil
}
