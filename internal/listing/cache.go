// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/constants"
)

const (
	// itemTTL bounds how long a single listing may be served from cache.
	// Writes evict eagerly; the TTL only covers evictions lost to races.
	itemTTL = 5 * time.Minute

	// pageTTL bounds the staleness of cached list pages. Pages are not
	// evicted on write, so this must stay short.
	pageTTL = 30 * time.Second
)

// RedisCache implements [Cache] on top of go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed listing cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

/*
GetProperty returns the cached listing for the given ID.

Description: Returns apperr.NotFound on a cache miss.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Property: Decoded entity
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisCache) GetProperty(context context.Context, id string) (*Property, error) {
	key := constants.RedisPrefixListing + id

	raw, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached listing")
		}
		return nil, fmt.Errorf("redis_listing_get_failed: %w", err)
	}

	property := &Property{}
	if err := json.Unmarshal(raw, property); err != nil {
		return nil, fmt.Errorf("redis_listing_decode_failed: %w", err)
	}

	return property, nil
}

/*
SetProperty caches a listing under its ID.

Parameters:
  - context: context.Context
  - property: *Property

Returns:
  - error: Encoding or storage failures
*/
func (cache *RedisCache) SetProperty(context context.Context, property *Property) error {
	key := constants.RedisPrefixListing + property.ID

	raw, err := json.Marshal(property)
	if err != nil {
		return fmt.Errorf("redis_listing_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, key, raw, itemTTL).Err(); err != nil {
		return fmt.Errorf("redis_listing_set_failed: %w", err)
	}

	return nil
}

/*
DeleteProperty evicts a listing after a write.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisCache) DeleteProperty(context context.Context, id string) error {
	key := constants.RedisPrefixListing + id

	if err := cache.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_listing_delete_failed: %w", err)
	}

	return nil
}

/*
GetPage returns a cached page result for the given composite key.

Description: Returns apperr.NotFound on a cache miss.

Parameters:
  - context: context.Context
  - key: string (Composite of filter + pagination, built by the service)

Returns:
  - *PageResult: Decoded page
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisCache) GetPage(context context.Context, key string) (*PageResult, error) {
	raw, err := cache.client.Get(context, constants.RedisPrefixListingPage+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached page")
		}
		return nil, fmt.Errorf("redis_listing_page_get_failed: %w", err)
	}

	page := &PageResult{}
	if err := json.Unmarshal(raw, page); err != nil {
		return nil, fmt.Errorf("redis_listing_page_decode_failed: %w", err)
	}

	return page, nil
}

/*
SetPage caches a page result with the short page TTL.

Parameters:
  - context: context.Context
  - key: string
  - page: *PageResult

Returns:
  - error: Encoding or storage failures
*/
func (cache *RedisCache) SetPage(context context.Context, key string, page *PageResult) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("redis_listing_page_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, constants.RedisPrefixListingPage+key, raw, pageTTL).Err(); err != nil {
		return fmt.Errorf("redis_listing_page_set_failed: %w", err)
	}

	return nil
}
