// Package account handles user registration: the account row and the
// scheduler's identity mapping are created together, so a user's numeric id
// exists before their first study call instead of being backfilled then.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/identity"
	"github.com/karuta-app/karuta-api/internal/store"
)

// Service creates user accounts.
type Service struct {
	db         *sql.DB
	users      store.UserStore
	identities store.IdentityStore
	resolver   identity.HashResolver
	logger     *slog.Logger
}

// NewService wires the account service. A nil db runs the two writes
// without a transaction, for stores with no transactional backend.
func NewService(db *sql.DB, users store.UserStore, identities store.IdentityStore, log *slog.Logger) *Service {
	if users == nil {
		panic("users cannot be nil")
	}
	if identities == nil {
		panic("identities cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:         db,
		users:      users,
		identities: identities,
		logger:     log.With(slog.String("component", "account_service")),
	}
}

// Register validates and creates a new account together with its identity
// mapping, seeded with the hash-derived numeric id so the mapping agrees
// with the resolver's fallback scheme.
// Returns store.ErrEmailExists when the email is already registered.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}

	create := func(ctx context.Context, users store.UserStore, identities store.IdentityStore) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}

		externalID := user.ID.String()
		numericID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
		if err != nil {
			return fmt.Errorf("failed to derive numeric id: %w", err)
		}
		if err := identities.CreateMapping(ctx, externalID, numericID); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		return nil
	}

	if s.db == nil {
		if err := create(ctx, s.users, s.identities); err != nil {
			return nil, err
		}
		return user, nil
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return create(ctx, s.users.WithTx(tx), s.identities.WithTx(tx))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
