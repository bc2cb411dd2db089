// Package cache memoizes cost breakdowns behind a small key/value repository that is
// backed either by process memory or by Redis.
package cache

import "context"

// Repository is a string key/value store. Get reports a miss with false; backends treat
// their own failures as misses so a cache outage never blocks a calculation.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
