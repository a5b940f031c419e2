package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key holding a user's active session JTI.
func (r *CacheKeyStruct) SessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

// PermissionRecordKey returns the cache key for a role's permission record.
func (r *CacheKeyStruct) PermissionRecordKey(role string) string {
	return fmt.Sprintf("perm:role:%s", role)
}

// PermissionEventsChannel returns the Redis PubSub channel carrying
// permission change events.
func (r *CacheKeyStruct) PermissionEventsChannel() string {
	return "permissions:events"
}

var CacheKey = NewCacheKeyStruct()
