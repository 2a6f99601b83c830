/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package treecache provides a path-keyed cache with hierarchical
// invalidation: deleting a key also deletes every key below it in the
// path tree. Entries expire after a configurable duration and a lazy
// sweep removes expired entries periodically.
//
// A btree companion index holds the same key set as the value map at
// all times; it drives prefix-scoped deletion in key order.
//
// Example usage:
//
//	c := treecache.New[string](0, 0)
//	c.Put("/a", "va")
//	c.Put("/a/b", "vb")
//	c.Delete("/a") // removes /a and /a/b
package treecache

import (
	"time"

	"github.com/google/btree"
)

const (
	DefaultCleanPeriod    = 60 * time.Second
	DefaultExpirationTime = 3600 * time.Second

	btreeDegree = 32
)

// TreeCache is a mapping from path-shaped string keys to values with
// TTL expiration and prefix-scoped deletion. All operations are safe
// for concurrent use.
type TreeCache[V any] interface {
	// Put upserts the value for the given key, stamping it with the
	// current time.
	Put(key string, val V)

	// Get returns the value for the given key if present and not
	// expired. An expired entry is dropped on access.
	Get(key string) (V, bool)

	// Delete removes the given key and every key starting with
	// key + "/". The removal is atomic with respect to other
	// operations on the cache.
	Delete(key string)

	// Len returns the number of stored entries, including expired
	// entries not yet dropped by Get or a sweep.
	Len() int

	// Sweep removes every entry whose stamp predates the expiration
	// window.
	Sweep()
}

// New returns a new TreeCache. A zero cleanPeriod or expirationTime
// selects the package default (60s, 3600s).
func New[V any](cleanPeriod, expirationTime time.Duration) TreeCache[V] {
	if cleanPeriod <= 0 {
		cleanPeriod = DefaultCleanPeriod
	}

	if expirationTime <= 0 {
		expirationTime = DefaultExpirationTime
	}

	return &trc[V]{
		d: make(map[string]*tce[V]),
		i: btree.NewG[string](btreeDegree, func(a, b string) bool {
			return a < b
		}),
		c: cleanPeriod,
		e: expirationTime,
		s: time.Now(),
	}
}
