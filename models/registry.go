package models

import (
	"context"
	"time"

	"github.com/techpros/finops_backend/config"
)

// Reference registry: the active Clients, TeamMembers and SoftwareItems the
// pipeline matches against. Lists are redis-cached; every write through the
// model layer invalidates its key, so staleness is bounded by the
// refetch-after-write protocol.

const (
	registryKeyClients       = "registry:clients"
	registryKeyTeamMembers   = "registry:team_members"
	registryKeySoftwareItems = "registry:software_items"

	registryCacheTTL = 10 * time.Minute
)

func InvalidateRegistryCache(keys ...string) {
	if len(keys) == 0 {
		keys = []string{registryKeyClients, registryKeyTeamMembers, registryKeySoftwareItems}
	}
	// cache invalidation failure is not a write failure
	if err := config.RemoveRedisKey(keys...); err != nil {
		config.LogError(config.GetLogger(), "models", "InvalidateRegistryCache", "RemoveRedisKey", keys, err)
	}
}

func listActive[T any](ctx context.Context, cacheKey string) ([]*T, error) {
	var cached []*T
	exists, err := config.GetRedisObject(cacheKey, &cached)
	if err == nil && exists {
		return cached, nil
	}

	db := config.GetDB()
	var results []*T
	if err := db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(cacheKey, results, registryCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "models", "listActive", "SetRedisObject", cacheKey, err)
	}
	return results, nil
}

func ListClients(ctx context.Context) ([]*Client, error) {
	return listActive[Client](ctx, registryKeyClients)
}

func ListTeamMembers(ctx context.Context) ([]*TeamMember, error) {
	return listActive[TeamMember](ctx, registryKeyTeamMembers)
}

func ListSoftwareItems(ctx context.Context) ([]*SoftwareItem, error) {
	return listActive[SoftwareItem](ctx, registryKeySoftwareItems)
}
