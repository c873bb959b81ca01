// Package identity maps opaque external identity strings (auth provider
// subjects) to the numeric ids that partition review records. The mapping
// must be stable for the lifetime of a user.
package identity

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/platform/logger"
	"github.com/karuta-app/karuta-api/internal/store"
)

// ErrEmptyExternalID is returned when the external identity string is empty.
var ErrEmptyExternalID = errors.New("external id cannot be empty")

// Resolver derives a numeric user id from an external identity string.
// Implementations must be deterministic: same input, same output.
type Resolver interface {
	ResolveNumericUserID(ctx context.Context, externalID string) (int64, error)
}

// HashResolver derives the numeric id from an FNV-1a hash of the external
// id. Collisions are possible; this is the "good enough" fallback scheme
// for when no identity table is reachable, not a collision-free mapping.
type HashResolver struct{}

// ResolveNumericUserID implements Resolver.
func (HashResolver) ResolveNumericUserID(_ context.Context, externalID string) (int64, error) {
	if externalID == "" {
		return 0, ErrEmptyExternalID
	}
	h := fnv.New32a()
	// fnv hash writes never fail
	_, _ = h.Write([]byte(externalID))
	return int64(h.Sum32()), nil
}

// StoreResolver resolves ids through the identity mapping table, creating a
// mapping on first sight. On store failure it falls back to the hash scheme
// so the scheduling pipeline never stalls for lack of a numeric id.
type StoreResolver struct {
	store    store.IdentityStore
	fallback HashResolver
	logger   *slog.Logger
}

// NewStoreResolver creates a store-backed resolver.
func NewStoreResolver(identityStore store.IdentityStore, log *slog.Logger) *StoreResolver {
	if identityStore == nil {
		panic("identityStore cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &StoreResolver{
		store:  identityStore,
		logger: log.With(slog.String("component", "identity_resolver")),
	}
}

// Ensure both resolvers satisfy the interface.
var (
	_ Resolver = HashResolver{}
	_ Resolver = (*StoreResolver)(nil)
)

// ResolveNumericUserID implements Resolver.
func (r *StoreResolver) ResolveNumericUserID(ctx context.Context, externalID string) (int64, error) {
	if externalID == "" {
		return 0, ErrEmptyExternalID
	}

	log := logger.FromContextOrDefault(ctx, r.logger)

	id, err := r.store.GetNumericID(ctx, externalID)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, store.ErrNotFound) {
		log.Warn("identity store lookup failed, falling back to hash",
			slog.String("error", err.Error()))
		return r.fallback.ResolveNumericUserID(ctx, externalID)
	}

	// First sight: seed the mapping with the hash-derived id so the two
	// schemes agree for any user resolved both ways.
	id, err = r.fallback.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		return 0, err
	}

	if err := r.store.CreateMapping(ctx, externalID, id); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race with a concurrent first sight; the winner wrote
			// the same hash-derived id.
			return id, nil
		}
		log.Warn("failed to persist identity mapping",
			slog.String("error", err.Error()))
	}
	return id, nil
}
