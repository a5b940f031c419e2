package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulseboard/pulseboard-backend/internal/config"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Permission service errors. Handlers map these onto distinct response
// codes with errors.Is.
var (
	ErrInvalidRole  = errors.New("invalid role specified")
	ErrRoleRequired = errors.New("authenticated user carries no role")
	ErrInvalidGrant = errors.New("invalid permission grant")
	ErrAdminLockout = errors.New("cannot remove admin access to the access-control page")
)

// Permission event kinds published on the change channel.
const (
	EventPermissionsUpdated = "updated"
	EventPermissionsReset   = "reset"
)

// PermissionEvent notifies listeners that a role's record changed and
// should be re-fetched.
type PermissionEvent struct {
	Role model.Role `json:"role"`
	Kind string     `json:"kind"`
	At   time.Time  `json:"at"`
}

// PermissionService is the resolver between stored permission documents and
// the catalog defaults: it seeds missing roles lazily, applies partial
// updates, enforces the admin lockout invariant, and resets to defaults.
//
// When a Redis client is present it also keeps a read-through cache per role
// and publishes change events; both are best-effort and never fail a call.
type PermissionService struct {
	store    repository.PermissionStore
	catalog  *model.Catalog
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewPermissionService creates a new PermissionService. rdb may be nil, in
// which case caching and change events are disabled.
func NewPermissionService(store repository.PermissionStore, catalog *model.Catalog, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *PermissionService {
	return &PermissionService{
		store:    store,
		catalog:  catalog,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "permission_service").Logger(),
	}
}

// EnsureDefaults creates a default record for every role that has none.
// Idempotent: existing records, including manually edited ones, are never
// overwritten. Two concurrent calls can at worst both write the same
// defaults for a still-missing role.
func (s *PermissionService) EnsureDefaults(ctx context.Context) error {
	for _, role := range model.AllRoles {
		existing, err := s.store.FindByRole(ctx, role)
		if err != nil {
			return fmt.Errorf("find permissions for %s: %w", role, err)
		}
		if existing != nil {
			continue
		}

		d := s.catalog.DefaultsFor(role)
		if _, err := s.store.Upsert(ctx, role, model.PermissionPatch{Pages: d.Pages, Resources: d.Resources}); err != nil {
			return fmt.Errorf("seed permissions for %s: %w", role, err)
		}
		s.log.Info().Str("role", string(role)).Msg("Default permissions created")
	}
	return nil
}

// GetAll returns every role's permission record, bootstrapping the default
// set first if the store is empty.
func (s *PermissionService) GetAll(ctx context.Context) ([]model.PermissionRecord, error) {
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}

	if err := s.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	return s.store.FindAll(ctx)
}

// GetByRole returns the permission record for a role, seeding it from the
// catalog default if absent. Fails with ErrInvalidRole for unknown roles
// before touching the store.
func (s *PermissionService) GetByRole(ctx context.Context, roleStr string) (*model.PermissionRecord, error) {
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleStr)
	}

	if rec := s.cachedRecord(ctx, role); rec != nil {
		return rec, nil
	}

	rec, err := s.store.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		d := s.catalog.DefaultsFor(role)
		rec, err = s.store.Upsert(ctx, role, model.PermissionPatch{Pages: d.Pages, Resources: d.Resources})
		if err != nil {
			return nil, fmt.Errorf("seed permissions for %s: %w", role, err)
		}
		s.log.Info().Str("role", string(role)).Msg("Default permissions created")
	}

	s.cacheRecord(ctx, rec)
	return rec, nil
}

// GetForClaims returns the record for the authenticated principal's role.
func (s *PermissionService) GetForClaims(ctx context.Context, claims *Claims) (*model.PermissionRecord, error) {
	if claims == nil || claims.Role == "" {
		return nil, ErrRoleRequired
	}
	return s.GetByRole(ctx, string(claims.Role))
}

// Update applies a partial patch to a role's record: a nil patch field
// leaves the stored field untouched, and within a supplied field each
// entry is upserted by its page/resource ID so untouched entries keep
// their prior grants. The admin lockout invariant is checked before any
// persistence, so a rejected update has no partial effect. If the role had
// no record yet the created record contains only the patched entries;
// missing entries then deny until the next reset or default seeding.
func (s *PermissionService) Update(ctx context.Context, roleStr string, patch model.PermissionPatch) (*model.PermissionRecord, error) {
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleStr)
	}

	if patch.Pages != nil {
		pages, err := model.NormalizePages(patch.Pages)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGrant, err)
		}
		patch.Pages = pages
	}
	if patch.Resources != nil {
		resources, err := model.NormalizeResources(patch.Resources)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGrant, err)
		}
		patch.Resources = resources
	}

	if role == model.RoleAdmin {
		for _, p := range patch.Pages {
			if p.PageID == model.PageAccessControl && !p.CanAccess {
				return nil, ErrAdminLockout
			}
		}
	}

	// Merge patched entries into the existing record so an update touching
	// one widget leaves the rest of the field intact.
	existing, err := s.store.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if patch.Pages != nil {
			patch.Pages = model.MergePages(existing.Pages, patch.Pages)
		}
		if patch.Resources != nil {
			patch.Resources = model.MergeResources(existing.Resources, patch.Resources)
		}
	}

	rec, err := s.store.Upsert(ctx, role, patch)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, role)
	s.publish(ctx, PermissionEvent{Role: role, Kind: EventPermissionsUpdated, At: time.Now().UTC()})
	s.log.Info().Str("role", string(role)).Msg("Permissions updated")

	return rec, nil
}

// Reset overwrites both grant fields with the catalog default for the role.
// This is a full replacement, never a merge, and cannot violate the admin
// lockout invariant because the defaults already satisfy it.
func (s *PermissionService) Reset(ctx context.Context, roleStr string) (*model.PermissionRecord, error) {
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleStr)
	}

	d := s.catalog.DefaultsFor(role)
	rec, err := s.store.Upsert(ctx, role, model.PermissionPatch{Pages: d.Pages, Resources: d.Resources})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, role)
	s.publish(ctx, PermissionEvent{Role: role, Kind: EventPermissionsReset, At: time.Now().UTC()})
	s.log.Info().Str("role", string(role)).Msg("Permissions reset to defaults")

	return rec, nil
}

// ─── Cache & change feed (best-effort) ──────────────────────────────────────

func (s *PermissionService) cachedRecord(ctx context.Context, role model.Role) *model.PermissionRecord {
	if s.rdb == nil {
		return nil
	}

	raw, err := s.rdb.Get(ctx, config.CacheKey.PermissionRecordKey(string(role))).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("role", string(role)).Msg("Permission cache read failed")
		}
		return nil
	}

	rec := &model.PermissionRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		s.log.Warn().Err(err).Str("role", string(role)).Msg("Permission cache entry corrupt")
		return nil
	}
	return rec
}

func (s *PermissionService) cacheRecord(ctx context.Context, rec *model.PermissionRecord) {
	if s.rdb == nil {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.PermissionRecordKey(string(rec.Role)), raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("role", string(rec.Role)).Msg("Permission cache write failed")
	}
}

func (s *PermissionService) invalidate(ctx context.Context, role model.Role) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.PermissionRecordKey(string(role))).Err(); err != nil {
		s.log.Warn().Err(err).Str("role", string(role)).Msg("Permission cache invalidation failed")
	}
}

func (s *PermissionService) publish(ctx context.Context, event PermissionEvent) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.PermissionEventsChannel(), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("role", string(event.Role)).Msg("Permission event publish failed")
	}
}
