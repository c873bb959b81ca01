package account

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/identity"
	"github.com/karuta-app/karuta-api/internal/store"
)

type fakeUserStore struct {
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

type fakeIdentityStore struct {
	mappings map[string]int64
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{mappings: make(map[string]int64)}
}

func (s *fakeIdentityStore) GetNumericID(_ context.Context, externalID string) (int64, error) {
	id, ok := s.mappings[externalID]
	if !ok {
		return 0, store.ErrIdentityNotFound
	}
	return id, nil
}

func (s *fakeIdentityStore) CreateMapping(_ context.Context, externalID string, numericID int64) error {
	if _, exists := s.mappings[externalID]; exists {
		return store.ErrDuplicate
	}
	s.mappings[externalID] = numericID
	return nil
}

func (s *fakeIdentityStore) WithTx(_ *sql.Tx) store.IdentityStore { return s }

func TestRegister(t *testing.T) {
	users := newFakeUserStore()
	identities := newFakeIdentityStore()
	svc := NewService(nil, users, identities, nil)

	user, err := svc.Register(context.Background(), "rin@example.com", "a-long-enough-password")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, uuid.Nil, user.ID)

	// The identity mapping exists and carries the hash-derived id.
	numericID, err := identities.GetNumericID(context.Background(), user.ID.String())
	require.NoError(t, err)
	expected, err := identity.HashResolver{}.ResolveNumericUserID(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, expected, numericID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := NewService(nil, users, newFakeIdentityStore(), nil)

	_, err := svc.Register(context.Background(), "rin@example.com", "a-long-enough-password")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "rin@example.com", "a-long-enough-password")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestRegisterInvalidInput(t *testing.T) {
	svc := NewService(nil, newFakeUserStore(), newFakeIdentityStore(), nil)

	_, err := svc.Register(context.Background(), "not-an-email", "a-long-enough-password")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(context.Background(), "rin@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}
