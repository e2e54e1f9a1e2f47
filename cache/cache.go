// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package cache keeps slow-changing lookups (throughput server lists, the
// public IP) between requests. Probe results themselves are never cached.
package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultExpire = 5 * time.Minute
	defaultPurge  = 30 * time.Second
)

// Cache is the process-wide in-memory store
var Cache = cache.New(defaultExpire, defaultPurge)

// Get returns the value for 'key', calling 'cb' on a miss and caching its
// result with no expiration.
func Get[T any](key string, cb func() (T, error)) (T, error) {
	return GetWithExpiration[T](key, cb, cache.NoExpiration)
}

// GetWithExpiration returns the value for 'key'.
//
// cache hit:
//
//	the cached value is returned, provided it still has type T.
//
// cache miss:
//
//	call 'cb' function to get a new value. If the callback doesn't return an error the returned value is
//	cached with the given expire duration and returned.
func GetWithExpiration[T any](key string, cb func() (T, error), expire time.Duration) (T, error) {
	if x, found := Cache.Get(key); found {
		if v, ok := x.(T); ok {
			return v, nil
		}
		// a different type was stored under the same key, refresh it
		Cache.Delete(key)
	}

	res, err := cb()
	// We don't cache errors
	if err == nil {
		Cache.Set(key, res, expire)
	}
	return res, err
}

// Forget drops 'key' so the next lookup calls its callback again
func Forget(key string) {
	Cache.Delete(key)
}
