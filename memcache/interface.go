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

// Package memcache provides a bounded in-memory LRU store. When the
// store is at capacity, putting a new key evicts the least recently
// used one; getting a key promotes it to most recently used. All
// operations are O(1) amortized and safe for concurrent use.
package memcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	liberr "github.com/nabbar/litefs/errors"
)

// DefaultMaxSize is the capacity used when New is given a non-positive
// size. It matches the session store bound.
const DefaultMaxSize = 1000000

// MemoryCache is a bounded LRU mapping.
type MemoryCache[K comparable, V any] interface {
	// Put stores the value for the given key, evicting the least
	// recently used key when at capacity.
	Put(key K, val V)

	// Get returns the value for the given key and promotes the key to
	// most recently used.
	Get(key K) (V, bool)

	// Delete removes the key from both the map and the recency list.
	Delete(key K)

	// Len returns the number of stored keys.
	Len() int
}

// New returns a new MemoryCache bounded to the given size.
func New[K comparable, V any](size int) (MemoryCache[K, V], liberr.Error) {
	if size <= 0 {
		size = DefaultMaxSize
	}

	c, e := lru.New[K, V](size)
	if e != nil {
		return nil, ErrorCacheCreate.Error(e)
	}

	return &mcc[K, V]{c: c}, nil
}
